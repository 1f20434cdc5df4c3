package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// RegisterInput carries the signup request. Roles may be empty.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// AuthResult is returned after a successful sign-in.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
}

// TokenMinter issues session tokens.
type TokenMinter interface {
	Mint(userID int64, username string, roles []domain.RoleName, now time.Time) (string, time.Time, error)
}

// TokenVerifier validates session tokens and returns their claims.
type TokenVerifier interface {
	Verify(token string, now time.Time) (*domain.Claims, error)
}

// LoginThrottle tracks failed sign-in attempts per username.
type LoginThrottle interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
