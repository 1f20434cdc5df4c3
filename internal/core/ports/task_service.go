package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// TaskService defines the task use cases. Every call receives the verified
// caller explicitly; nothing is read from ambient request state.
type TaskService interface {
	Create(ctx context.Context, caller domain.Claims, fields domain.TaskFields) (*domain.Task, error)
	List(ctx context.Context, caller domain.Claims) ([]*domain.Task, error)
	Get(ctx context.Context, caller domain.Claims, id int64) (*domain.Task, error)
	Update(ctx context.Context, caller domain.Claims, id int64, fields domain.TaskFields) (*domain.Task, error)
	Delete(ctx context.Context, caller domain.Claims, id int64) error
}
