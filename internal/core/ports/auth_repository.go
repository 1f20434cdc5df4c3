package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// UserRepository defines persistence for user credentials.
// Lookups report absence with domain.ErrUserNotFound.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create inserts the user and assigns its ID. The store enforces uniqueness of
	// username and email atomically and reports violations as
	// domain.ErrUsernameTaken / domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

// RoleRepository defines persistence for the pre-seeded roles.
type RoleRepository interface {
	// FindByName returns domain.ErrRoleNotFound when the role is absent.
	FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	Save(ctx context.Context, role *domain.Role) error
	Count(ctx context.Context) (int64, error)
}
