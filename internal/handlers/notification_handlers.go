package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sipoma/internal/common"
	"sipoma/internal/models"
	"sipoma/internal/services"
)

// NotificationHandlers serves the administrators' inbox
type NotificationHandlers struct {
	notificationSvc services.NotificationService
}

// NewNotificationHandlers creates a new notification handlers instance
func NewNotificationHandlers(notificationSvc services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notificationSvc: notificationSvc}
}

// ListUnread returns unread admin notifications, newest first
func (h *NotificationHandlers) ListUnread(c echo.Context) error {
	notifications, err := h.notificationSvc.ListUnread(c.Request().Context())
	if err != nil {
		return httpError(err, http.StatusConflict)
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkRead marks a notification as read
func (h *NotificationHandlers) MarkRead(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return httpError(err, http.StatusBadRequest)
	}

	if err := h.notificationSvc.MarkRead(c.Request().Context(), id); err != nil {
		return httpError(err, http.StatusConflict)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
