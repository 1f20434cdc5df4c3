package handler

import (
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// taskRequest is the body of create and update. dueDate is RFC 3339.
type taskRequest struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=500"`
	Status      string     `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
	Priority    string     `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (r taskRequest) fields() domain.TaskFields {
	return domain.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		Priority:    domain.Priority(r.Priority),
		DueDate:     r.DueDate,
	}
}

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Username    string     `json:"username"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Username:    t.OwnerUsername,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}
