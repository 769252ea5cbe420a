package domain

import "context"

// UnreadMarker records that a participant has not read a message.
// Its absence means the message was read.
type UnreadMarker struct {
	ID            string `json:"id"`
	MessageID     string `json:"message_id"`
	ParticipantID string `json:"participant_id"`
}

// MarkSelection selects which unread markers MarkAsRead clears
type MarkSelection struct {
	All        bool
	MessageIDs []string
}

// MarkAll selects every unread marker of the participant in the room
func MarkAll() MarkSelection {
	return MarkSelection{All: true}
}

// MarkMessages selects the markers of the given messages only
func MarkMessages(ids ...string) MarkSelection {
	return MarkSelection{MessageIDs: ids}
}

// IsEmpty reports whether the selection can match nothing
func (s MarkSelection) IsEmpty() bool {
	return !s.All && len(s.MessageIDs) == 0
}

// UnreadMarkerRepository defines the interface for read/unread tracking
type UnreadMarkerRepository interface {
	// MarkAsRead deletes the selected markers of userID in chatRoomID and
	// returns how many were removed. Missing markers are ignored.
	MarkAsRead(ctx context.Context, userID, chatRoomID string, sel MarkSelection) (int64, error)
}
