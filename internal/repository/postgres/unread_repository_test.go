package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"roomchat/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadMarkerRepository_MarkAsRead(t *testing.T) {
	t.Run("all_markers_in_room", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("AND p.user_id = $1 AND p.chat_room_id = $2")).
			WithArgs(testUserID, testRoomID).
			WillReturnResult(sqlmock.NewResult(0, 4))

		n, err := NewUnreadMarkerRepository(db).MarkAsRead(context.Background(), testUserID, testRoomID, domain.MarkAll())

		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("selected_messages", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("AND um.message_id = ANY($3::uuid[])")).
			WithArgs(testUserID, testRoomID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		sel := domain.MarkMessages(testMessageID, "0e4b7c1a-2d3f-4a5b-8c6d-7e8f9a0b1c2d")
		n, err := NewUnreadMarkerRepository(db).MarkAsRead(context.Background(), testUserID, testRoomID, sel)

		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty_selection_issues_no_statement", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		n, err := NewUnreadMarkerRepository(db).MarkAsRead(context.Background(), testUserID, testRoomID, domain.MarkMessages())

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database_error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("DELETE FROM unread_markers").WillReturnError(errors.New("deadlock detected"))

		_, err = NewUnreadMarkerRepository(db).MarkAsRead(context.Background(), testUserID, testRoomID, domain.MarkAll())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to mark messages as read")
	})
}
