package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// ErrUnauthenticated is returned for a missing, unknown or expired token
	ErrUnauthenticated = errors.New("not authenticated")
)

// Session maps a bearer token to a user. Sessions are issued by the
// identity service; this service only reads them.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRepository defines the interface for session lookup
type SessionRepository interface {
	GetByToken(ctx context.Context, token string) (*Session, error)
}
