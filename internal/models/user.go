package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus is the approval state of an account.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusRejected:
		return true
	}
	return false
}

// statusTransitions lists the allowed moves out of each status.
// approved and rejected are terminal.
var statusTransitions = map[UserStatus][]UserStatus{
	UserStatusPending: {UserStatusApproved, UserStatusRejected},
}

// CanTransition reports whether a user in status from may move to status to.
func CanTransition(from, to UserStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UserRole separates administrators from plant users.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	FullName     string     `json:"full_name" db:"full_name"`
	Status       UserStatus `json:"status" db:"status"`
	Role         UserRole   `json:"role" db:"role"`
	Version      int        `json:"version" db:"version"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user may use the admin surfaces.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
