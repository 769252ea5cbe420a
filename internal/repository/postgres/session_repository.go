package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomchat/internal/domain"
	"roomchat/internal/observability"
)

// SessionRepository looks up sessions issued by the identity service
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// GetByToken retrieves a non-expired session by its token
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	defer observability.ObserveDBQuery("get_by_token", "sessions", time.Now())

	query := `
		SELECT token, user_id, expires_at
		FROM sessions
		WHERE token = $1
	`
	session := &domain.Session{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !session.ExpiresAt.After(r.now()) {
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}
