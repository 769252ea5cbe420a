package domain

import (
	"context"
	"time"
)

// MaxMessageTextLength is the upper bound on message text, in characters
const MaxMessageTextLength = 255

// Message represents a chat message. Immutable once stored.
type Message struct {
	ID         string    `json:"id"`
	ChatRoomID string    `json:"chat_room_id"`
	SenderID   string    `json:"sender_id"`
	Text       string    `json:"text"`
	Date       time.Time `json:"date"`
}

// MessagesType selects the read or unread half of a user's view of a room
type MessagesType string

const (
	MessagesRead   MessagesType = "read"
	MessagesUnread MessagesType = "unread"
)

// MessageRepository defines the interface for the message log
type MessageRepository interface {
	// Append stores the message and creates an unread marker for every
	// participant of the room except the sender, atomically. It returns the
	// number of markers created.
	Append(ctx context.Context, message *Message) (int64, error)

	// ReadMessages returns messages without an unread marker for the user,
	// newest first. A non-nil before keeps only messages strictly older than it.
	// A limit <= 0 returns every match.
	ReadMessages(ctx context.Context, chatRoomID, userID string, before *time.Time, limit int) ([]*Message, error)

	// UnreadMessages returns messages with an unread marker for the user,
	// oldest first.
	UnreadMessages(ctx context.Context, chatRoomID, userID string, limit int) ([]*Message, error)

	GetMessageTimestamp(ctx context.Context, messageID string) (time.Time, bool, error)
}
