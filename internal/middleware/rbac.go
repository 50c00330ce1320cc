package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sipoma/internal/common"
	"sipoma/internal/models"
)

// RequireRole lets the request through only for sessions with the given role.
// It must run after SessionAuth.
func RequireRole(role models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if got != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
