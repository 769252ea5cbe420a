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

// ChatRoomRepository implements domain.ChatRoomRepository for PostgreSQL
type ChatRoomRepository struct {
	db *sql.DB
}

// NewChatRoomRepository creates a new PostgreSQL chat room repository
func NewChatRoomRepository(db *sql.DB) *ChatRoomRepository {
	return &ChatRoomRepository{db: db}
}

// Create inserts a new chat room into the database
func (r *ChatRoomRepository) Create(ctx context.Context, room *domain.ChatRoom) error {
	defer observability.ObserveDBQuery("create", "chat_rooms", time.Now())

	query := `
		INSERT INTO chat_rooms (name)
		VALUES ($1)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, room.Name).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat room: %w", err)
	}
	return nil
}

// GetByID retrieves a chat room by ID
func (r *ChatRoomRepository) GetByID(ctx context.Context, id string) (*domain.ChatRoom, error) {
	defer observability.ObserveDBQuery("get_by_id", "chat_rooms", time.Now())

	query := `
		SELECT id, name, created_at
		FROM chat_rooms
		WHERE id = $1
	`
	room := &domain.ChatRoom{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrChatRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}
	return room, nil
}

// Delete removes a chat room; participants, messages and unread markers cascade
func (r *ChatRoomRepository) Delete(ctx context.Context, id string) error {
	defer observability.ObserveDBQuery("delete", "chat_rooms", time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat room: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete chat room: %w", err)
	}
	if n == 0 {
		return domain.ErrChatRoomNotFound
	}
	return nil
}
