package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const msgTaskDeleted = "Tarea eliminada exitosamente"

type TaskHandler struct {
	taskService ports.TaskService
}

func NewTaskHandler(taskService ports.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create stores a task owned by the caller.
//
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      taskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}

	req, err := bindTask(c)
	if err != nil {
		recordTask(domain.OpCreate, err)
		return err
	}

	task, err := h.taskService.Create(c.Request().Context(), claims, req.fields())
	recordTask(domain.OpCreate, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List returns the caller's tasks, or every task for admins.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.List(c.Request().Context(), claims)
	recordTask(domain.OpReadAll, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Get returns a single task.
//
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      400  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), claims, id)
	recordTask(domain.OpReadOne, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update replaces the mutable fields of a task.
//
// @Summary      Update task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Task ID"
// @Param        body  body      taskRequest  true  "Task"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	req, err := bindTask(c)
	if err != nil {
		recordTask(domain.OpUpdate, err)
		return err
	}

	task, err := h.taskService.Update(c.Request().Context(), claims, id, req.fields())
	recordTask(domain.OpUpdate, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete removes a task.
//
// @Summary      Delete task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	err = h.taskService.Delete(c.Request().Context(), claims, id)
	recordTask(domain.OpDelete, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgTaskDeleted})
}

func bindTask(c echo.Context) (taskRequest, error) {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}

func recordTask(op domain.Operation, err error) {
	result := "ok"
	var he *echo.HTTPError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrForbidden):
		result = "forbidden"
	case errors.Is(err, domain.ErrTaskNotFound):
		result = "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.As(err, &he):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.TaskOperationsTotal.WithLabelValues(string(op), result).Inc()
}
