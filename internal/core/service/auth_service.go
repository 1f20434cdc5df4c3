package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// AuthService implements registration and sign-in.
type AuthService struct {
	users      ports.UserRepository
	resolver   *RoleResolver
	tokens     ports.TokenMinter
	throttle   ports.LoginThrottle
	bcryptCost int
	log        zerolog.Logger
	now        func() time.Time
}

// NewAuthService wires the service. A nil throttle disables sign-in throttling.
func NewAuthService(
	users ports.UserRepository,
	resolver *RoleResolver,
	tokens ports.TokenMinter,
	throttle ports.LoginThrottle,
	bcryptCost int,
	log zerolog.Logger,
) *AuthService {
	if throttle == nil {
		throttle = noopThrottle{}
	}
	return &AuthService{
		users:      users,
		resolver:   resolver,
		tokens:     tokens,
		throttle:   throttle,
		bcryptCost: bcryptCost,
		log:        log,
		now:        time.Now,
	}
}

// Register creates a user after checking that username and email are free.
// The store's unique constraints back the pre-checks, so a concurrent
// registration that slips past them still fails with the same errors.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	roles, err := s.resolveRoles(ctx, in.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// resolveRoles applies the default-to-USER policy and removes duplicates.
func (s *AuthService) resolveRoles(ctx context.Context, requested []string) ([]domain.Role, error) {
	if len(requested) == 0 {
		requested = []string{string(domain.RoleUser)}
	}

	seen := make(map[domain.RoleName]struct{}, len(requested))
	roles := make([]domain.Role, 0, len(requested))
	for _, token := range requested {
		role, err := s.resolver.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[role.Name]; dup {
			continue
		}
		seen[role.Name] = struct{}{}
		roles = append(roles, *role)
	}
	return roles, nil
}

// Authenticate verifies credentials and mints a session token. Unknown users and
// wrong passwords produce the same domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	key := domain.NormalizeUsername(username)
	blocked, err := s.throttle.Blocked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, continuing")
	} else if blocked {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		comparePassword(string(dummyHash), password)
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	if !comparePassword(user.PasswordHash, password) {
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Mint(user.ID, user.Username, user.RoleNames(), s.now())
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}

	if err := s.throttle.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login throttle")
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user signed in")
	return &ports.AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if err := s.throttle.RecordFailure(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

type noopThrottle struct{}

func (noopThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (noopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (noopThrottle) Reset(context.Context, string) error           { return nil }
