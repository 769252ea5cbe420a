package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"roomchat/internal/domain"
	"roomchat/internal/observability"
)

const participantsUserChatRoomKey = "participants_user_chat_room_key"

// ParticipantRepository implements domain.ParticipantRepository for PostgreSQL
type ParticipantRepository struct {
	db *sql.DB
}

// NewParticipantRepository creates a new PostgreSQL participant repository
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Add makes a user a participant of a chat room. Messages sent before
// joining get no unread markers for the new participant.
func (r *ParticipantRepository) Add(ctx context.Context, participant *domain.Participant) error {
	defer observability.ObserveDBQuery("add", "participants", time.Now())

	query := `
		INSERT INTO participants (user_id, chat_room_id)
		VALUES ($1, $2)
		RETURNING id, joined_at
	`
	err := r.db.QueryRowContext(ctx, query,
		participant.UserID,
		participant.ChatRoomID,
	).Scan(&participant.ID, &participant.JoinedAt)

	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err, participantsUserChatRoomKey):
		return domain.ErrAlreadyParticipant
	case IsForeignKeyViolation(err, ""):
		return domain.ErrChatRoomNotFound
	default:
		return fmt.Errorf("failed to add participant: %w", err)
	}
}

// Remove deletes a participant; its unread markers cascade
func (r *ParticipantRepository) Remove(ctx context.Context, chatRoomID, userID string) error {
	defer observability.ObserveDBQuery("remove", "participants", time.Now())

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM participants WHERE chat_room_id = $1 AND user_id = $2`,
		chatRoomID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if n == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

// IsParticipant checks if a user is a participant of a chat room
func (r *ParticipantRepository) IsParticipant(ctx context.Context, chatRoomID, userID string) (bool, error) {
	defer observability.ObserveDBQuery("is_participant", "participants", time.Now())

	query := `
		SELECT EXISTS(
			SELECT 1 FROM participants
			WHERE chat_room_id = $1 AND user_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, chatRoomID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

// ListByChatRoom retrieves the participants of a chat room ordered by user
func (r *ParticipantRepository) ListByChatRoom(ctx context.Context, chatRoomID string) ([]*domain.Participant, error) {
	defer observability.ObserveDBQuery("list", "participants", time.Now())

	query := `
		SELECT id, user_id, chat_room_id, joined_at
		FROM participants
		WHERE chat_room_id = $1
		ORDER BY user_id
	`
	rows, err := r.db.QueryContext(ctx, query, chatRoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p := &domain.Participant{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.ChatRoomID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}
