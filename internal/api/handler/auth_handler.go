package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const msgRegistered = "Usuario registrado exitosamente"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signin authenticates a user and returns a bearer token.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signinRequest  true  "Login credentials"
// @Success      200   {object}  jwtResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Router       /api/auth/signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.SigninDuration.Observe(time.Since(start).Seconds()) }()

	var req signinRequest
	if err := c.Bind(&req); err != nil {
		metrics.SigninsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.SigninsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	result, err := h.authService.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.SigninsTotal.WithLabelValues(signinResult(err)).Inc()
		return err
	}

	metrics.SigninsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, newJWTResponse(result.Token, result.User))
}

// Signup registers a new account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	_, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: msgRegistered})
}

func signinResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, domain.ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, domain.ErrRoleNotConfigured):
		return "role_not_configured"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
