package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmanager/task-api/internal/core/domain"
)

func TestUserRepository_UniqueKeys(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	created, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "Alice@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "alice@example.com", created.Email)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = repo.Create(ctx, &domain.User{Username: "alice2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	exists, err := repo.ExistsByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, &domain.User{Username: "racer", Email: fmt.Sprintf("r%d@example.com", i)})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	_, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "a@example.com", Roles: []domain.Role{{Name: domain.RoleUser}}})
	require.NoError(t, err)

	u, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	u.Roles[0].Name = domain.RoleAdmin

	again, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, again.Roles[0].Name)
}

func TestRoleRepository_SaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRoleRepository()

	first := &domain.Role{Name: domain.RoleAdmin}
	require.NoError(t, repo.Save(ctx, first))
	second := &domain.Role{Name: domain.RoleAdmin}
	require.NoError(t, repo.Save(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	n, _ := repo.Count(ctx)
	assert.Equal(t, int64(1), n)

	_, err := repo.FindByName(ctx, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestTaskRepository_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()
	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	a := &domain.Task{Title: "a", OwnerID: 1, DueDate: &due}
	b := &domain.Task{Title: "b", OwnerID: 2}
	c := &domain.Task{Title: "c", OwnerID: 1}
	for _, task := range []*domain.Task{a, b, c} {
		require.NoError(t, repo.Save(ctx, task))
	}
	assert.Equal(t, []int64{1, 2, 3}, []int64{a.ID, b.ID, c.ID})

	owned, err := repo.FindByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "a", owned[0].Title)
	assert.Equal(t, "c", owned[1].Title)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	a.Title = "a2"
	require.NoError(t, repo.Save(ctx, a))
	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Title)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), domain.ErrTaskNotFound)
	_, err = repo.FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.ErrorIs(t, repo.Save(ctx, &domain.Task{ID: 99, Title: "ghost"}), domain.ErrTaskNotFound)
}
