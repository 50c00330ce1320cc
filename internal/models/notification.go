package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEvent identifies why an administrator is being notified.
type NotificationEvent string

const (
	NotificationUserRegistered NotificationEvent = "user_registered"
	NotificationPendingDigest  NotificationEvent = "pending_digest"
)

// Notification is an entry in the administrators' inbox.
type Notification struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	EventType NotificationEvent `json:"event_type" db:"event_type"`
	SubjectID *uuid.UUID        `json:"subject_id" db:"subject_id"`
	Message   string            `json:"message" db:"message"`
	ReadAt    *time.Time        `json:"read_at" db:"read_at"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// WebhookPayload is the body posted to the optional notification webhook.
type WebhookPayload struct {
	ID        string            `json:"id"`
	Type      NotificationEvent `json:"type"`
	SubjectID string            `json:"subject_id,omitempty"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
}
