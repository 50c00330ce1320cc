package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated browser context. The bearer token carries
// the session ID; the session itself lives in the cache until logout or expiry.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TokenResponse is returned on successful sign-in.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	SessionID   string    `json:"session_id"`
	IssuedAt    time.Time `json:"issued_at"`
}
