package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sipoma/internal/common"
	"sipoma/internal/models"
	"sipoma/internal/services"
)

// UserHandlers handles the admin user management HTTP requests
type UserHandlers struct {
	users   services.UserService
	exports services.ExportService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(users services.UserService, exports services.ExportService) *UserHandlers {
	return &UserHandlers{users: users, exports: exports}
}

// ListUsersRequest represents query parameters for listing users
type ListUsersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// AuditHistoryResponse wraps a user's audit trail
type AuditHistoryResponse struct {
	Entries []*models.AuditLog `json:"entries"`
	Count   int                `json:"count"`
}

// ListUsers returns every user regardless of status
func (h *UserHandlers) ListUsers(c echo.Context) error {
	var req ListUsersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters").SetInternal(err)
	}

	users, err := h.users.ListAll(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return httpError(err, http.StatusConflict)
	}
	return c.JSON(http.StatusOK, newUserListResponse(users))
}

// GetUser returns a single user
func (h *UserHandlers) GetUser(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return httpError(err, http.StatusBadRequest)
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err, http.StatusConflict)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser edits the profile fields of a user
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	actorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return httpError(err, http.StatusBadRequest)
	}

	var req services.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	user, err := h.users.UpdateProfile(ctx, actorID, id, req)
	if err != nil {
		return httpError(err, http.StatusConflict)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUserHistory returns the audit trail of a user, newest first
func (h *UserHandlers) GetUserHistory(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return httpError(err, http.StatusBadRequest)
	}

	entries, err := h.users.History(c.Request().Context(), id)
	if err != nil {
		return httpError(err, http.StatusConflict)
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	return c.JSON(http.StatusOK, AuditHistoryResponse{Entries: entries, Count: len(entries)})
}

// ExportUsers writes all users to object storage as CSV (default) or PDF
// and returns a download link
func (h *UserHandlers) ExportUsers(c echo.Context) error {
	format, err := services.ParseExportFormat(c.QueryParam("format"))
	if err != nil {
		return httpError(err, http.StatusBadRequest)
	}

	result, err := h.exports.ExportUsers(c.Request().Context(), format)
	if err != nil {
		return httpError(err, http.StatusConflict)
	}
	return c.JSON(http.StatusOK, result)
}
