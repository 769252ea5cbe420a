package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"roomchat/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRoomRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO chat_rooms (name)")).
		WithArgs("general").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(testRoomID, createdAt))

	room := &domain.ChatRoom{Name: "general"}
	require.NoError(t, NewChatRoomRepository(db).Create(context.Background(), room))
	assert.Equal(t, testRoomID, room.ID)
	assert.Equal(t, createdAt, room.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRoomRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM chat_rooms")).
			WithArgs(testRoomID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow(testRoomID, "general", time.Now()))

		room, err := NewChatRoomRepository(db).GetByID(context.Background(), testRoomID)
		require.NoError(t, err)
		assert.Equal(t, "general", room.Name)
	})

	t.Run("not_found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM chat_rooms")).WillReturnError(sql.ErrNoRows)

		room, err := NewChatRoomRepository(db).GetByID(context.Background(), testRoomID)
		assert.ErrorIs(t, err, domain.ErrChatRoomNotFound)
		assert.Nil(t, room)
	})
}

func TestChatRoomRepository_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM chat_rooms WHERE id = $1")).
			WithArgs(testRoomID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewChatRoomRepository(db).Delete(context.Background(), testRoomID))
	})

	t.Run("not_found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM chat_rooms")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, NewChatRoomRepository(db).Delete(context.Background(), testRoomID), domain.ErrChatRoomNotFound)
	})
}
