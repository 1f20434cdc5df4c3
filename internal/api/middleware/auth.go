package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// ClaimsKey is the echo.Context key holding the caller's *domain.Claims.
const ClaimsKey = "claims"

// Auth verifies the bearer token and injects the claims into the context.
// Failures are returned as domain errors for the central error handler.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return authWithClock(verifier, time.Now)
}

func authWithClock(verifier ports.TokenVerifier, now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return fmt.Errorf("%w: missing authorization header", domain.ErrUnauthenticated)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]), now())
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return "signature"
	default:
		return "malformed"
	}
}
