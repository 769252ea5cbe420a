package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrChatRoomNotFound    = errors.New("chat room not found")
	ErrAccessDenied        = errors.New("user is not a participant of this chat room")
	ErrAlreadyParticipant  = errors.New("user is already a participant of this chat room")
	ErrParticipantNotFound = errors.New("participant not found")
)

// ChatRoom represents a named chat room
type ChatRoom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant links a user to a chat room. Unique per (user, chat room).
type Participant struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ChatRoomID string    `json:"chat_room_id"`
	JoinedAt   time.Time `json:"joined_at"`
}

// ChatRoomRepository defines the interface for chat room data access.
// Deleting a room cascades to its participants, messages and unread markers.
type ChatRoomRepository interface {
	Create(ctx context.Context, room *ChatRoom) error
	GetByID(ctx context.Context, id string) (*ChatRoom, error)
	Delete(ctx context.Context, id string) error
}

// ParticipantRepository defines the interface for room membership
type ParticipantRepository interface {
	Add(ctx context.Context, participant *Participant) error
	Remove(ctx context.Context, chatRoomID, userID string) error
	IsParticipant(ctx context.Context, chatRoomID, userID string) (bool, error)
	ListByChatRoom(ctx context.Context, chatRoomID string) ([]*Participant, error)
}
