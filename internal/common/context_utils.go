package common

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"sipoma/internal/models"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	RoleKey      contextKey = "role"
	SessionIDKey contextKey = "session_id"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WithSession stores the session's identity in ctx.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, session.UserID)
	ctx = context.WithValue(ctx, RoleKey, session.Role)
	return context.WithValue(ctx, SessionIDKey, session.ID)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetRoleFromContext extracts the caller's role from the request context
func GetRoleFromContext(ctx context.Context) (models.UserRole, bool) {
	role, ok := ctx.Value(RoleKey).(models.UserRole)
	return role, ok
}

// GetSessionIDFromContext extracts the session ID from the request context
func GetSessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	return id, ok
}

// ValidateUUID validates UUID format with comprehensive checks
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, NewValidationError(fieldName, "is required")
	}

	if len(idStr) != 36 {
		return uuid.Nil, NewValidationError(fieldName, "must be exactly 36 characters (including hyphens)")
	}

	for _, pos := range []int{8, 13, 18, 23} {
		if idStr[pos] != '-' {
			return uuid.Nil, NewValidationError(fieldName, "has invalid UUID format")
		}
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, NewValidationError(fieldName, fmt.Sprintf("contains invalid characters: %v", err))
	}

	return id, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string, maxLength int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return NewValidationError(fieldName, "is required")
	}
	if len(value) > maxLength {
		return NewValidationError(fieldName, fmt.Sprintf("cannot exceed %d characters", maxLength))
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address so that comparisons are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare, well-formed address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewValidationError("email", "is required")
	}
	if len(email) > 254 {
		return NewValidationError("email", "cannot exceed 254 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return NewValidationError("email", "is not a valid address")
	}
	return nil
}

// ValidatePaginationParams clamps limit and offset to sane bounds
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, NewValidationError("offset", "cannot exceed 1,000,000")
	}

	return limit, offset, nil
}
