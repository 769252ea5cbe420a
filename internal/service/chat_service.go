package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"roomchat/internal/domain"
	"roomchat/internal/observability"
	"roomchat/internal/validation"

	"github.com/samber/lo"
)

// EventPublisher receives domain events after the change is committed
type EventPublisher interface {
	PublishMessageSent(ctx context.Context, chatRoomID, senderID, messageID, text string, markers int64) error
	PublishMessagesRead(ctx context.Context, chatRoomID, userID string, cleared int64) error
}

// GetMessagesParams carries the raw query parameters of a fetch.
// A nil pointer means the parameter was absent.
type GetMessagesParams struct {
	ChatRoomID   string
	UserID       string
	MessagesType *string
	Count        *string
	MessageID    *string
}

type ChatService struct {
	messageRepo      domain.MessageRepository
	participantRepo  domain.ParticipantRepository
	unreadRepo       domain.UnreadMarkerRepository
	events           EventPublisher
	maxMessagesCount int
}

func NewChatService(
	messageRepo domain.MessageRepository,
	participantRepo domain.ParticipantRepository,
	unreadRepo domain.UnreadMarkerRepository,
	events EventPublisher,
	maxMessagesCount int,
) *ChatService {
	return &ChatService{
		messageRepo:      messageRepo,
		participantRepo:  participantRepo,
		unreadRepo:       unreadRepo,
		events:           events,
		maxMessagesCount: maxMessagesCount,
	}
}

// HasAccess reports whether the user is a participant of the chat room
func (s *ChatService) HasAccess(ctx context.Context, userID, chatRoomID string) (bool, error) {
	return s.participantRepo.IsParticipant(ctx, chatRoomID, userID)
}

// GetMessages returns one page of the user's read or unread messages.
// Read pages are newest first and may start before a cursor message;
// unread pages are oldest first and ignore the cursor.
func (s *ChatService) GetMessages(ctx context.Context, p GetMessagesParams) ([]*domain.Message, error) {
	count, err := validation.ParseCount(p.Count, s.maxMessagesCount)
	if err != nil {
		return nil, err
	}

	messagesType, err := validation.ValidateMessagesType(p.MessagesType)
	if err != nil {
		return nil, err
	}

	var messages []*domain.Message
	switch messagesType {
	case domain.MessagesRead:
		messages, err = s.readMessages(ctx, p, count)
	case domain.MessagesUnread:
		messages, err = s.messageRepo.UnreadMessages(ctx, p.ChatRoomID, p.UserID, count)
	}
	if err != nil {
		return nil, err
	}

	observability.MessagesFetchedTotal.WithLabelValues(string(messagesType)).Add(float64(len(messages)))
	return messages, nil
}

func (s *ChatService) readMessages(ctx context.Context, p GetMessagesParams, count int) ([]*domain.Message, error) {
	var before *time.Time
	if p.MessageID != nil && *p.MessageID != "" {
		id, err := validation.ParseMessageID(*p.MessageID)
		if err != nil {
			return nil, err
		}

		ts, ok, err := s.messageRepo.GetMessageTimestamp(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []*domain.Message{}, nil
		}
		before = &ts
	}

	return s.messageRepo.ReadMessages(ctx, p.ChatRoomID, p.UserID, before, count)
}

// FetchMessages returns a page like GetMessages and then marks exactly the
// returned messages as read for the user
func (s *ChatService) FetchMessages(ctx context.Context, p GetMessagesParams) ([]*domain.Message, error) {
	messages, err := s.GetMessages(ctx, p)
	if err != nil {
		return nil, err
	}

	ids := lo.Map(messages, func(m *domain.Message, _ int) string { return m.ID })
	if _, err := s.MarkAsRead(ctx, p.UserID, p.ChatRoomID, domain.MarkMessages(ids...)); err != nil {
		return nil, err
	}

	return messages, nil
}

// SendMessage validates and stores a message. Every other participant of
// the room gets it as unread.
func (s *ChatService) SendMessage(ctx context.Context, chatRoomID, userID, text string) (*domain.Message, error) {
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, err
	}
	if err := validation.ValidateTextLength(text); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatRoomID: chatRoomID,
		SenderID:   userID,
		Text:       text,
	}

	markers, err := s.messageRepo.Append(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	observability.MessagesSentTotal.Inc()
	observability.UnreadMarkersCreatedTotal.Add(float64(markers))

	s.publish(ctx, "message.sent", func() error {
		return s.events.PublishMessageSent(ctx, chatRoomID, userID, msg.ID, msg.Text, markers)
	})

	return msg, nil
}

// MarkAsRead clears the selected unread markers of the user in the room
// and returns how many were cleared
func (s *ChatService) MarkAsRead(ctx context.Context, userID, chatRoomID string, sel domain.MarkSelection) (int64, error) {
	cleared, err := s.unreadRepo.MarkAsRead(ctx, userID, chatRoomID, sel)
	if err != nil {
		return 0, err
	}

	selection := "messages"
	if sel.All {
		selection = "all"
	}
	observability.UnreadMarkersClearedTotal.WithLabelValues(selection).Add(float64(cleared))

	if cleared > 0 {
		s.publish(ctx, "messages.read", func() error {
			return s.events.PublishMessagesRead(ctx, chatRoomID, userID, cleared)
		})
	}

	return cleared, nil
}

// publish delivers an event on a best-effort basis; the change it
// describes is already committed
func (s *ChatService) publish(ctx context.Context, event string, fn func() error) {
	if s.events == nil {
		return
	}
	if err := fn(); err != nil {
		observability.EventsPublishFailedTotal.WithLabelValues(event).Inc()
		observability.FromContext(ctx).Warn("failed to publish chat event",
			slog.String("event", event),
			slog.String("error", err.Error()))
	}
}
