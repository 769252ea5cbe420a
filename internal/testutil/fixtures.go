package testutil

import (
	"context"
	"testing"
	"time"

	"roomchat/internal/domain"

	"github.com/google/uuid"
)

// NewUserID returns a fresh user id
func NewUserID() string {
	return uuid.NewString()
}

// SeedRoom creates a chat room in store with the given participants and
// returns its id
func SeedRoom(t *testing.T, store *MemoryStore, members ...string) string {
	t.Helper()
	ctx := context.Background()

	room := &domain.ChatRoom{Name: "room-" + uuid.NewString()[:8]}
	if err := store.Create(ctx, room); err != nil {
		t.Fatalf("failed to create chat room: %v", err)
	}
	for _, userID := range members {
		if err := store.Add(ctx, &domain.Participant{UserID: userID, ChatRoomID: room.ID}); err != nil {
			t.Fatalf("failed to add participant %s: %v", userID, err)
		}
	}
	return room.ID
}

// SeedMessages appends one message per text from sender to the room, oldest first
func SeedMessages(t *testing.T, store *MemoryStore, chatRoomID, senderID string, texts ...string) []*domain.Message {
	t.Helper()

	messages := make([]*domain.Message, 0, len(texts))
	for _, text := range texts {
		msg := &domain.Message{ChatRoomID: chatRoomID, SenderID: senderID, Text: text}
		if _, err := store.Append(context.Background(), msg); err != nil {
			t.Fatalf("failed to append message: %v", err)
		}
		messages = append(messages, msg)
	}
	return messages
}

// SessionOptions allows customizing session fixture creation
type SessionOptions struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// NewTestSession creates a test session with sensible defaults
func NewTestSession(opts ...func(*SessionOptions)) *domain.Session {
	o := &SessionOptions{
		UserID:    uuid.NewString(),
		Token:     "token-" + uuid.NewString(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	for _, opt := range opts {
		opt(o)
	}

	return &domain.Session{
		Token:     o.Token,
		UserID:    o.UserID,
		ExpiresAt: o.ExpiresAt,
	}
}

// WithSessionUserID sets the session owner
func WithSessionUserID(userID string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.UserID = userID
	}
}

// WithToken sets the session token
func WithToken(token string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.Token = token
	}
}

// WithExpired makes the session already expired
func WithExpired() func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.ExpiresAt = time.Now().Add(-time.Hour)
	}
}

// MessageIDs returns the ids of messages in order
func MessageIDs(messages []*domain.Message) []string {
	ids := make([]string, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	return ids
}
