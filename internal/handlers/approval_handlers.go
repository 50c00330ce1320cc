package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"sipoma/internal/common"
	"sipoma/internal/models"
	"sipoma/internal/services"
)

// ApprovalHandlers exposes the registration approval queue to administrators
type ApprovalHandlers struct {
	approvals services.ApprovalService
}

// NewApprovalHandlers creates a new approval handlers instance
func NewApprovalHandlers(approvals services.ApprovalService) *ApprovalHandlers {
	return &ApprovalHandlers{approvals: approvals}
}

// UserListResponse wraps a list of users
type UserListResponse struct {
	Users []*models.User `json:"users"`
	Count int            `json:"count"`
}

func newUserListResponse(users []*models.User) UserListResponse {
	if users == nil {
		users = []*models.User{}
	}
	return UserListResponse{Users: users, Count: len(users)}
}

// ListPending returns every user awaiting a decision, oldest first
func (h *ApprovalHandlers) ListPending(c echo.Context) error {
	users, err := h.approvals.ListPending(c.Request().Context())
	if err != nil {
		return httpError(err, http.StatusConflict)
	}
	return c.JSON(http.StatusOK, newUserListResponse(users))
}

// Approve moves a pending user to approved
func (h *ApprovalHandlers) Approve(c echo.Context) error {
	return h.decide(c, h.approvals.Approve)
}

// Reject moves a pending user to rejected
func (h *ApprovalHandlers) Reject(c echo.Context) error {
	return h.decide(c, h.approvals.Reject)
}

func (h *ApprovalHandlers) decide(c echo.Context, action func(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error)) error {
	ctx := c.Request().Context()

	actorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	userID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return httpError(err, http.StatusBadRequest)
	}

	user, err := action(ctx, actorID, userID)
	if err != nil {
		return httpError(err, http.StatusConflict)
	}
	return c.JSON(http.StatusOK, user)
}
