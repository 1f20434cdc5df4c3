package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// Client-facing messages.
const (
	msgUsernameTaken      = "Error: El nombre de usuario ya está en uso"
	msgEmailTaken         = "Error: El email ya está en uso"
	msgRoleNotFound       = "Error: Rol no encontrado"
	msgInvalidCredentials = "Error: Credenciales inválidas"
	msgTooManyAttempts    = "Error: Demasiados intentos fallidos, intente más tarde"
	msgUnauthorized       = "Error: No autorizado"
	msgTaskNotFound       = "Tarea no encontrada"
	msgForbidden          = "No tienes permiso para acceder a esta tarea"
	msgInternal           = "Error interno del servidor"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and client messages.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusBadRequest, msgUsernameTaken
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusBadRequest, msgEmailTaken
	case errors.Is(err, domain.ErrRoleNotConfigured):
		log.Error().Err(err).Str("path", c.Path()).Msg("role not configured")
		return http.StatusBadRequest, msgRoleNotFound
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, msgTooManyAttempts
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrTokenSignatureInvalid),
		errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, msgTaskNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, msgInternal
}
