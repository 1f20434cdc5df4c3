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

// BootstrapAccount is a documented, non-secret account created on an empty store.
type BootstrapAccount struct {
	Username string
	Email    string
	Password string
	Role     domain.RoleName
}

// BootstrapAccounts are created by EnsureSeeded when the users collection is empty.
var BootstrapAccounts = []BootstrapAccount{
	{Username: "admin", Email: "admin@taskmanager.com", Password: "admin123", Role: domain.RoleAdmin},
	{Username: "user", Email: "user@taskmanager.com", Password: "user123", Role: domain.RoleUser},
}

// RoleNameFor maps a requested role token to its canonical role. "admin" in any
// case selects ADMIN; every other value, recognised or not, selects USER.
func RoleNameFor(token string) domain.RoleName {
	if strings.EqualFold(strings.TrimSpace(token), "admin") {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// RoleResolver maps role tokens to stored roles and seeds the store at startup.
type RoleResolver struct {
	roles      ports.RoleRepository
	users      ports.UserRepository
	bcryptCost int
	seedUsers  bool
	log        zerolog.Logger
}

func NewRoleResolver(roles ports.RoleRepository, users ports.UserRepository, bcryptCost int, seedUsers bool, log zerolog.Logger) *RoleResolver {
	return &RoleResolver{
		roles:      roles,
		users:      users,
		bcryptCost: bcryptCost,
		seedUsers:  seedUsers,
		log:        log,
	}
}

// Resolve returns the stored role for token. It never creates roles; a missing
// canonical role is a deployment error reported as domain.ErrRoleNotConfigured.
func (r *RoleResolver) Resolve(ctx context.Context, token string) (*domain.Role, error) {
	return r.find(ctx, RoleNameFor(token))
}

func (r *RoleResolver) find(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	role, err := r.roles.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			r.log.Error().Str("role", string(name)).Msg("canonical role missing from store")
			return nil, fmt.Errorf("%w: %s", domain.ErrRoleNotConfigured, name)
		}
		return nil, fmt.Errorf("find role %s: %w", name, err)
	}
	return role, nil
}

// EnsureSeeded inserts the canonical roles when none exist and, when enabled,
// the bootstrap accounts when no users exist. Safe to run on every startup.
func (r *RoleResolver) EnsureSeeded(ctx context.Context) error {
	roleCount, err := r.roles.Count(ctx)
	if err != nil {
		return fmt.Errorf("count roles: %w", err)
	}
	if roleCount == 0 {
		for _, name := range domain.CanonicalRoles {
			if err := r.roles.Save(ctx, &domain.Role{Name: name}); err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}
		}
		r.log.Info().Int("count", len(domain.CanonicalRoles)).Msg("roles seeded")
	}

	// Roles must be resolvable from here on; fail startup loudly otherwise.
	for _, name := range domain.CanonicalRoles {
		if _, err := r.find(ctx, name); err != nil {
			return err
		}
	}

	if !r.seedUsers {
		return nil
	}

	userCount, err := r.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	for _, acc := range BootstrapAccounts {
		if err := r.seedAccount(ctx, acc); err != nil {
			return err
		}
		r.log.Info().Str("username", acc.Username).Str("role", string(acc.Role)).Msg("bootstrap account created")
	}
	return nil
}

func (r *RoleResolver) seedAccount(ctx context.Context, acc BootstrapAccount) error {
	role, err := r.find(ctx, acc.Role)
	if err != nil {
		return err
	}

	hash, err := hashPassword(acc.Password, r.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.users.Create(ctx, &domain.User{
		Username:     acc.Username,
		Email:        acc.Email,
		PasswordHash: hash,
		Roles:        []domain.Role{*role},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	// Another instance seeding concurrently already created it.
	if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed user %s: %w", acc.Username, err)
	}
	return nil
}
