package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"roomchat/internal/domain"
	"roomchat/internal/observability"

	"github.com/lib/pq"
)

const markAsReadQuery = `
		DELETE FROM unread_markers um
		USING participants p
		WHERE um.participant_id = p.id
		AND p.user_id = $1
		AND p.chat_room_id = $2`

// UnreadMarkerRepository implements domain.UnreadMarkerRepository for PostgreSQL
type UnreadMarkerRepository struct {
	db *sql.DB
}

// NewUnreadMarkerRepository creates a new PostgreSQL unread marker repository
func NewUnreadMarkerRepository(db *sql.DB) *UnreadMarkerRepository {
	return &UnreadMarkerRepository{db: db}
}

// MarkAsRead deletes the selected unread markers with a single statement.
// A user without a participant row matches nothing.
func (r *UnreadMarkerRepository) MarkAsRead(ctx context.Context, userID, chatRoomID string, sel domain.MarkSelection) (int64, error) {
	if sel.IsEmpty() {
		return 0, nil
	}
	defer observability.ObserveDBQuery("mark_as_read", "unread_markers", time.Now())

	query := markAsReadQuery
	args := []any{userID, chatRoomID}
	if !sel.All {
		query += "\n\t\tAND um.message_id = ANY($3::uuid[])"
		args = append(args, pq.Array(sel.MessageIDs))
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages as read: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count read markers: %w", err)
	}
	return n, nil
}
