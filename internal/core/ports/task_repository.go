package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// FindByID returns domain.ErrTaskNotFound when no task has the id.
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	// FindByOwner is the scoped ReadAll query; the filter runs inside the store.
	FindByOwner(ctx context.Context, ownerID int64) ([]*domain.Task, error)
	FindAll(ctx context.Context) ([]*domain.Task, error)
	// Save inserts the task when ID is zero (assigning a new id) and replaces it otherwise.
	Save(ctx context.Context, task *domain.Task) error
	// Delete returns domain.ErrTaskNotFound when nothing was removed.
	Delete(ctx context.Context, id int64) error
}
