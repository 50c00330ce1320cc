package common

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// repository specific errors
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")

	// workflow errors
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountPending     = errors.New("account is awaiting approval")
	ErrAccountRejected    = errors.New("account registration was rejected")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps a failure returned by the identity store.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err as a StoreError for operation op.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	if e.Rejected() {
		return e.Err.Error()
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Rejected reports whether the store refused the request for a known reason,
// as opposed to failing unexpectedly.
func (e *StoreError) Rejected() bool {
	return errors.Is(e.Err, ErrEmailTaken)
}

// InvalidStateTransitionError is returned when an approval action targets a
// user whose status does not allow it.
type InvalidStateTransitionError struct {
	UserID uuid.UUID
	From   string
	To     string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot move user %s from %s to %s", e.UserID, e.From, e.To)
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// SessionResolutionError wraps any failure while resolving a session.
// Callers treat it as the absence of a session.
type SessionResolutionError struct {
	Err error
}

func (e *SessionResolutionError) Error() string {
	return fmt.Sprintf("session resolution failed: %v", e.Err)
}

func (e *SessionResolutionError) Unwrap() error {
	return e.Err
}
