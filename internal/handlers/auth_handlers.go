package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/middleware"
	"sipoma/internal/models"
	"sipoma/internal/services"
)

// AuthHandlers handles registration, sign-in and session HTTP requests
type AuthHandlers struct {
	registration services.RegistrationService
	auth         services.AuthService
	resolver     services.SessionResolver
	users        services.UserService
	secureCookie bool
	log          logging.Logger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(
	registration services.RegistrationService,
	auth services.AuthService,
	resolver services.SessionResolver,
	users services.UserService,
	secureCookie bool,
	log logging.Logger,
) *AuthHandlers {
	return &AuthHandlers{
		registration: registration,
		auth:         auth,
		resolver:     resolver,
		users:        users,
		secureCookie: secureCookie,
		log:          log.With("component", "auth_handlers"),
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	models.TokenResponse
	Redirect string       `json:"redirect"`
	User     *models.User `json:"user"`
}

// Register creates a pending account awaiting administrator approval
func (h *AuthHandlers) Register(c echo.Context) error {
	var req services.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if _, err := h.registration.Register(c.Request().Context(), req); err != nil {
		return httpError(err, http.StatusBadRequest)
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	result, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err, http.StatusBadRequest)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token.AccessToken,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, LoginResponse{
		TokenResponse: result.Token,
		Redirect:      models.RouteDashboard,
		User:          result.User,
	})
}

// Logout ends the session. It always succeeds from the client's point of view.
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	token := sessionToken(c)
	if token == "" {
		h.log.Warn(ctx, "logout without a session token")
	} else if err := h.auth.SignOut(ctx, token); err != nil {
		h.log.Warn(ctx, "logout failed to end session", "error", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]string{"redirect": models.RouteLogin})
}

// Session reports where the client should land given its current session
func (h *AuthHandlers) Session(c echo.Context) error {
	resolution := h.resolver.Resolve(c.Request().Context(), services.SessionContext{Token: sessionToken(c)})
	return c.JSON(http.StatusOK, resolution)
}

// Me returns the signed-in user
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	user, err := h.users.Get(ctx, userID)
	if err != nil {
		return httpError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, user)
}

// sessionToken extracts the session token from the Authorization header,
// falling back to the session cookie.
func sessionToken(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
