package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
)

type stubTaskService struct {
	createFn func(ctx context.Context, caller domain.Claims, f domain.TaskFields) (*domain.Task, error)
	listFn   func(ctx context.Context, caller domain.Claims) ([]*domain.Task, error)
	getFn    func(ctx context.Context, caller domain.Claims, id int64) (*domain.Task, error)
	updateFn func(ctx context.Context, caller domain.Claims, id int64, f domain.TaskFields) (*domain.Task, error)
	deleteFn func(ctx context.Context, caller domain.Claims, id int64) error
}

func (s *stubTaskService) Create(ctx context.Context, caller domain.Claims, f domain.TaskFields) (*domain.Task, error) {
	return s.createFn(ctx, caller, f)
}

func (s *stubTaskService) List(ctx context.Context, caller domain.Claims) ([]*domain.Task, error) {
	return s.listFn(ctx, caller)
}

func (s *stubTaskService) Get(ctx context.Context, caller domain.Claims, id int64) (*domain.Task, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubTaskService) Update(ctx context.Context, caller domain.Claims, id int64, f domain.TaskFields) (*domain.Task, error) {
	return s.updateFn(ctx, caller, id, f)
}

func (s *stubTaskService) Delete(ctx context.Context, caller domain.Claims, id int64) error {
	return s.deleteFn(ctx, caller, id)
}

var testCaller = &domain.Claims{UserID: 7, Username: "alice", Roles: []domain.RoleName{domain.RoleUser}}

func TestTaskHandler_Create(t *testing.T) {
	due := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubTaskService{
		createFn: func(ctx context.Context, caller domain.Claims, f domain.TaskFields) (*domain.Task, error) {
			if caller.UserID != 7 {
				t.Fatalf("unexpected caller: %+v", caller)
			}
			if f.Status != domain.StatusTodo || f.Priority != domain.PriorityHigh || f.DueDate == nil || !f.DueDate.Equal(due) {
				t.Fatalf("unexpected fields: %+v", f)
			}
			return &domain.Task{ID: 11, Title: f.Title, Status: f.Status, Priority: f.Priority, OwnerUsername: "alice"}, nil
		},
	}
	h := NewTaskHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/tasks",
		`{"title":"ship it","status":"TODO","priority":"HIGH","dueDate":"2026-06-01T12:00:00Z"}`)
	c.Set(middleware.ClaimsKey, testCaller)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != float64(11) || resp["username"] != "alice" || resp["status"] != "TODO" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if _, ok := resp["owner_id"]; ok {
		t.Fatalf("response must not expose owner_id: %v", resp)
	}
}

func TestTaskHandler_Create_Validation(t *testing.T) {
	stub := &stubTaskService{
		createFn: func(ctx context.Context, caller domain.Claims, f domain.TaskFields) (*domain.Task, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	h := NewTaskHandler(stub)

	for _, body := range []string{
		`{"status":"TODO","priority":"LOW"}`,
		`{"title":"x","status":"BLOCKED","priority":"LOW"}`,
		`{"title":"x","status":"TODO","priority":"URGENT"}`,
		`{"title":"x","status":"TODO","priority":"LOW","dueDate":"tomorrow"}`,
	} {
		c, _ := newTestContext(http.MethodPost, "/api/tasks", body)
		c.Set(middleware.ClaimsKey, testCaller)

		var he *echo.HTTPError
		if err := h.Create(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %v", body, err)
		}
	}
}

func TestTaskHandler_Get_BadID(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{})

	c, _ := newTestContext(http.MethodGet, "/api/tasks/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set(middleware.ClaimsKey, testCaller)

	var he *echo.HTTPError
	if err := h.Get(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTaskHandler_Get_PropagatesForbidden(t *testing.T) {
	stub := &stubTaskService{
		getFn: func(ctx context.Context, caller domain.Claims, id int64) (*domain.Task, error) {
			if id != 42 {
				t.Fatalf("unexpected id %d", id)
			}
			return nil, domain.ErrForbidden
		},
	}
	h := NewTaskHandler(stub)

	c, _ := newTestContext(http.MethodGet, "/api/tasks/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	c.Set(middleware.ClaimsKey, testCaller)

	if err := h.Get(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTaskHandler_List_EmptyIsArray(t *testing.T) {
	stub := &stubTaskService{
		listFn: func(ctx context.Context, caller domain.Claims) ([]*domain.Task, error) {
			return nil, nil
		},
	}
	h := NewTaskHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/tasks", "")
	c.Set(middleware.ClaimsKey, testCaller)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	stub := &stubTaskService{
		deleteFn: func(ctx context.Context, caller domain.Claims, id int64) error {
			return nil
		},
	}
	h := NewTaskHandler(stub)

	c, rec := newTestContext(http.MethodDelete, "/api/tasks/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	c.Set(middleware.ClaimsKey, testCaller)

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != msgTaskDeleted {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestTaskHandler_MissingClaims(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{})
	c, _ := newTestContext(http.MethodGet, "/api/tasks", "")

	if err := h.List(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
