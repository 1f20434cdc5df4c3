package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
)

// callerClaims extracts the claims injected by the Auth middleware. Missing
// claims mean the route was wired without Auth.
func callerClaims(c echo.Context) (domain.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(*domain.Claims)
	if !ok || claims == nil {
		return domain.Claims{}, fmt.Errorf("%w: missing authentication claims", domain.ErrUnauthenticated)
	}
	return *claims, nil
}

// taskID parses the :id path parameter.
func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Error: Identificador de tarea inválido")
	}
	return id, nil
}
