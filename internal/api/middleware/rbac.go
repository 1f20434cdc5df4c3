package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// RequireRoles enforces role-based access control. The caller must hold at
// least one of the allowed roles; Auth must run first.
func RequireRoles(allowedRoles ...domain.RoleName) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*domain.Claims)
			if !ok || claims == nil {
				return domain.ErrUnauthenticated
			}
			for _, r := range allowedRoles {
				if claims.HasRole(r) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Error: Acceso denegado")
		}
	}
}
