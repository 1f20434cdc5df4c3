package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/taskmanager/task-api/internal/core/domain"
)

type TaskRepository struct {
	mu       sync.RWMutex
	byID     map[int64]*domain.Task
	sequence int64
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{byID: make(map[int64]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	return &clone
}

func (r *TaskRepository) FindByID(_ context.Context, id int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *TaskRepository) FindByOwner(_ context.Context, ownerID int64) ([]*domain.Task, error) {
	return r.collect(func(t *domain.Task) bool { return t.OwnerID == ownerID }), nil
}

func (r *TaskRepository) FindAll(_ context.Context) ([]*domain.Task, error) {
	return r.collect(func(*domain.Task) bool { return true }), nil
}

// collect returns matching tasks ordered by id, like the Mongo repository.
func (r *TaskRepository) collect(match func(*domain.Task) bool) []*domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Task, 0, len(r.byID))
	for _, t := range r.byID {
		if match(t) {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *TaskRepository) Save(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == 0 {
		r.sequence++
		task.ID = r.sequence
	} else if _, ok := r.byID[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.byID[task.ID] = cloneTask(task)
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.byID, id)
	return nil
}
