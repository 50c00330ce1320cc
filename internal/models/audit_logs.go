package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents an audit log entry for tracking account changes
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TableName string     `json:"table_name" db:"table_name"`
	RecordID  string     `json:"record_id" db:"record_id"`
	Action    string     `json:"action" db:"action"`
	NewValues JSONB      `json:"new_values" db:"new_values"`
	OldValues JSONB      `json:"old_values" db:"old_values"`
	ChangedBy *uuid.UUID `json:"changed_by" db:"changed_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Action constants for audit logs
const (
	ActionRegister      = "REGISTER"
	ActionApprove       = "APPROVE"
	ActionReject        = "REJECT"
	ActionUpdateProfile = "UPDATE_PROFILE"
)

// JSONB represents PostgreSQL JSONB type
type JSONB map[string]interface{}
