package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"sipoma/internal/common"
	"sipoma/internal/services"
)

const (
	// SessionCookieName carries the session token for browser clients.
	SessionCookieName = "sipoma_session"

	// SessionContextKey is where the resolved *models.Session is stored on echo.Context.
	SessionContextKey = "session"
)

// SessionAuth authenticates a request by its bearer token or session cookie
// and requires the session to still exist in the store.
func SessionAuth(auth services.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ,cookie:" + SessionCookieName,
		ContextKey:  SessionContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			ctx := c.Request().Context()
			session, err := auth.GetSession(ctx, token)
			if err != nil {
				return nil, err
			}
			c.SetRequest(c.Request().WithContext(common.WithSession(ctx, session)))
			return session, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		},
	})
}
