package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"roomchat/internal/domain"
	"roomchat/internal/observability"
)

const (
	insertMessageQuery = `
		INSERT INTO messages (chat_room_id, sender_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	// One statement, so the participant snapshot is taken atomically
	createUnreadMarkersQuery = `
		INSERT INTO unread_markers (message_id, participant_id)
		SELECT $1::uuid, p.id
		FROM participants p
		WHERE p.chat_room_id = $2 AND p.user_id <> $3
	`

	readMessagesQuery = `
		SELECT m.id, m.chat_room_id, m.sender_id, m.text, m.created_at
		FROM messages m
		WHERE m.chat_room_id = $1
		AND NOT EXISTS (
			SELECT 1
			FROM unread_markers um
			JOIN participants p ON p.id = um.participant_id
			WHERE um.message_id = m.id AND p.user_id = $2
		)`

	unreadMessagesQuery = `
		SELECT m.id, m.chat_room_id, m.sender_id, m.text, m.created_at
		FROM messages m
		JOIN unread_markers um ON um.message_id = m.id
		JOIN participants p ON p.id = um.participant_id
		WHERE m.chat_room_id = $1 AND p.user_id = $2`

	messageTimestampQuery = `SELECT created_at FROM messages WHERE id = $1`
)

// MessageRepository implements domain.MessageRepository for PostgreSQL
type MessageRepository struct {
	db *sql.DB
	tx *TxManager
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{
		db: db,
		tx: NewTxManager(db),
	}
}

// Append inserts a message and its unread markers in one transaction
func (r *MessageRepository) Append(ctx context.Context, message *domain.Message) (int64, error) {
	defer observability.ObserveDBQuery("append", "messages", time.Now())

	var (
		id      string
		date    time.Time
		markers int64
	)
	err := r.tx.WithTx(ctx, readCommitted, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insertMessageQuery,
			message.ChatRoomID,
			message.SenderID,
			message.Text,
		).Scan(&id, &date)
		if err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		res, err := tx.ExecContext(ctx, createUnreadMarkersQuery, id, message.ChatRoomID, message.SenderID)
		if err != nil {
			return fmt.Errorf("failed to create unread markers: %w", err)
		}
		markers, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count unread markers: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	message.ID = id
	message.Date = date
	return markers, nil
}

// ReadMessages retrieves messages the user has read, newest first
func (r *MessageRepository) ReadMessages(ctx context.Context, chatRoomID, userID string, before *time.Time, limit int) ([]*domain.Message, error) {
	defer observability.ObserveDBQuery("read_messages", "messages", time.Now())

	var b strings.Builder
	b.WriteString(readMessagesQuery)
	args := []any{chatRoomID, userID}

	if before != nil {
		args = append(args, *before)
		fmt.Fprintf(&b, "\n\t\tAND m.created_at < $%d", len(args))
	}
	b.WriteString("\n\t\tORDER BY m.created_at DESC, m.seq DESC")
	args = appendLimit(&b, args, limit)

	messages, err := r.queryMessages(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query read messages: %w", err)
	}
	return messages, nil
}

// UnreadMessages retrieves messages the user has not read, oldest first
func (r *MessageRepository) UnreadMessages(ctx context.Context, chatRoomID, userID string, limit int) ([]*domain.Message, error) {
	defer observability.ObserveDBQuery("unread_messages", "messages", time.Now())

	var b strings.Builder
	b.WriteString(unreadMessagesQuery)
	b.WriteString("\n\t\tORDER BY m.created_at ASC, m.seq ASC")
	args := appendLimit(&b, []any{chatRoomID, userID}, limit)

	messages, err := r.queryMessages(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread messages: %w", err)
	}
	return messages, nil
}

// GetMessageTimestamp returns the creation time of a message.
// The boolean is false when no such message exists.
func (r *MessageRepository) GetMessageTimestamp(ctx context.Context, messageID string) (time.Time, bool, error) {
	defer observability.ObserveDBQuery("get_timestamp", "messages", time.Now())

	var date time.Time
	err := r.db.QueryRowContext(ctx, messageTimestampQuery, messageID).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get message timestamp: %w", err)
	}
	return date, true, nil
}

func (r *MessageRepository) queryMessages(ctx context.Context, query string, args ...any) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		msg := &domain.Message{}
		err := rows.Scan(
			&msg.ID,
			&msg.ChatRoomID,
			&msg.SenderID,
			&msg.Text,
			&msg.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// appendLimit adds a LIMIT clause for positive limits
func appendLimit(b *strings.Builder, args []any, limit int) []any {
	if limit <= 0 {
		return args
	}
	args = append(args, limit)
	fmt.Fprintf(b, "\n\t\tLIMIT $%d", len(args))
	return args
}
