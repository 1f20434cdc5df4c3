// Package memory provides mutex-guarded in-process implementations of the
// store ports. It backs STORE_DRIVER=memory and the end-to-end tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/taskmanager/task-api/internal/core/domain"
)

type UserRepository struct {
	mu       sync.RWMutex
	byID     map[int64]*domain.User
	byName   map[string]int64
	byEmail  map[string]int64
	sequence int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[int64]*domain.User),
		byName:  make(map[string]int64),
		byEmail: make(map[string]int64),
	}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byName[username]
	return ok, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[strings.ToLower(email)]
	return ok, nil
}

// Create checks both unique keys and inserts under the same write lock.
func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := r.byName[user.Username]; ok {
		return nil, domain.ErrUsernameTaken
	}
	if _, ok := r.byEmail[email]; ok {
		return nil, domain.ErrEmailTaken
	}

	r.sequence++
	stored := cloneUser(user)
	stored.ID = r.sequence
	stored.Email = email

	r.byID[stored.ID] = stored
	r.byName[stored.Username] = stored.ID
	r.byEmail[email] = stored.ID
	return cloneUser(stored), nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.byID)), nil
}
