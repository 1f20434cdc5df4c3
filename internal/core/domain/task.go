package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the progress state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is owned by exactly one user; OwnerID is set on creation and never changes.
type Task struct {
	ID            int64      `json:"id" bson:"_id"`
	Title         string     `json:"title" bson:"title"`
	Description   string     `json:"description,omitempty" bson:"description,omitempty"`
	Status        TaskStatus `json:"status" bson:"status"`
	Priority      Priority   `json:"priority" bson:"priority"`
	DueDate       *time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	OwnerID       int64      `json:"owner_id" bson:"owner_id"`
	OwnerUsername string     `json:"owner_username" bson:"owner_username"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// TaskFields are the mutable attributes of a task.
type TaskFields struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    Priority
	DueDate     *time.Time
}

// Validate checks the field constraints shared by create and update.
func (f TaskFields) Validate() error {
	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case len(title) > MaxTitleLength:
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, MaxTitleLength)
	case len(f.Description) > MaxDescriptionLength:
		return fmt.Errorf("%w: description must be at most %d characters", ErrInvalidInput, MaxDescriptionLength)
	case !f.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	case !f.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, f.Priority)
	}
	return nil
}

// Apply copies the mutable fields onto the task. Owner and creation time are untouched.
func (t *Task) Apply(f TaskFields, now time.Time) {
	t.Title = strings.TrimSpace(f.Title)
	t.Description = f.Description
	t.Status = f.Status
	t.Priority = f.Priority
	if f.DueDate != nil {
		due := f.DueDate.UTC()
		t.DueDate = &due
	} else {
		t.DueDate = nil
	}
	t.UpdatedAt = now
}
