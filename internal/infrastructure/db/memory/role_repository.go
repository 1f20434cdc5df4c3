package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/taskmanager/task-api/internal/core/domain"
)

type RoleRepository struct {
	mu     sync.RWMutex
	byName map[domain.RoleName]domain.Role
}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{byName: make(map[domain.RoleName]domain.Role)}
}

func (r *RoleRepository) FindByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.byName[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}

// Save is idempotent per role name.
func (r *RoleRepository) Save(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[role.Name]; ok {
		role.ID = existing.ID
		return nil
	}
	role.ID = strconv.Itoa(len(r.byName) + 1)
	r.byName[role.Name] = *role
	return nil
}

func (r *RoleRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.byName)), nil
}
