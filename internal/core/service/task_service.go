package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type TaskService struct {
	repo   ports.TaskRepository
	authz  *Authorizer
	logger zerolog.Logger
	now    func() time.Time
}

func NewTaskService(repo ports.TaskRepository, authz *Authorizer, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, authz: authz, logger: logger, now: time.Now}
}

// Create stores a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller domain.Claims, fields domain.TaskFields) (*domain.Task, error) {
	if s.authz.Authorize(caller, domain.OpCreate, caller.UserID) == domain.Deny {
		return nil, domain.ErrForbidden
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task := &domain.Task{
		OwnerID:       caller.UserID,
		OwnerUsername: caller.Username,
		CreatedAt:     now,
	}
	task.Apply(fields, now)

	if err := s.repo.Save(ctx, task); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", caller.UserID).Msg("failed to create task")
		return nil, fmt.Errorf("save task: %w", err)
	}

	s.logger.Info().Int64("task_id", task.ID).Int64("owner_id", task.OwnerID).Msg("task created")
	return task, nil
}

// List returns every task for ADMIN callers and only the caller's own tasks
// otherwise. The scope is part of the store query.
func (s *TaskService) List(ctx context.Context, caller domain.Claims) ([]*domain.Task, error) {
	if s.authz.Authorize(caller, domain.OpReadAll, 0) == domain.Deny {
		return nil, domain.ErrForbidden
	}

	ownerID, all := s.authz.ListScope(caller)
	var (
		tasks []*domain.Task
		err   error
	)
	if all {
		tasks, err = s.repo.FindAll(ctx)
	} else {
		tasks, err = s.repo.FindByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns domain.ErrTaskNotFound for missing tasks and domain.ErrForbidden
// for tasks the caller may not read.
func (s *TaskService) Get(ctx context.Context, caller domain.Claims, id int64) (*domain.Task, error) {
	return s.load(ctx, caller, domain.OpReadOne, id)
}

func (s *TaskService) Update(ctx context.Context, caller domain.Claims, id int64, fields domain.TaskFields) (*domain.Task, error) {
	task, err := s.load(ctx, caller, domain.OpUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	task.Apply(fields, s.now().UTC())
	if err := s.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	s.logger.Info().Int64("task_id", task.ID).Int64("caller_id", caller.UserID).Msg("task updated")
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, caller domain.Claims, id int64) error {
	if _, err := s.load(ctx, caller, domain.OpDelete, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Info().Int64("task_id", id).Int64("caller_id", caller.UserID).Msg("task deleted")
	return nil
}

// load fetches the task and gates op against its owner. Missing tasks are
// reported before the ownership check.
func (s *TaskService) load(ctx context.Context, caller domain.Claims, op domain.Operation, id int64) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.authz.Authorize(caller, op, task.OwnerID) == domain.Deny {
		s.logger.Warn().
			Int64("task_id", id).
			Int64("caller_id", caller.UserID).
			Str("operation", string(op)).
			Msg("task access denied")
		return nil, domain.ErrForbidden
	}
	return task, nil
}
