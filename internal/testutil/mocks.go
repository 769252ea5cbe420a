// Package testutil provides shared test doubles and fixtures for the chat
// service packages.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"roomchat/internal/domain"

	"github.com/google/uuid"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
	ErrMockDatabase       = errors.New("mock: database unavailable")
)

// MemoryStore is an in-memory chat database. It implements
// domain.ChatRoomRepository, domain.ParticipantRepository,
// domain.MessageRepository and domain.UnreadMarkerRepository with the same
// semantics as the PostgreSQL repositories. Set a *Func field to override
// one method.
type MemoryStore struct {
	mu sync.RWMutex

	// Clock stamps appended messages. Defaults to a clock that advances one
	// millisecond per message.
	Clock func() time.Time

	IsParticipantFunc       func(ctx context.Context, chatRoomID, userID string) (bool, error)
	AppendFunc              func(ctx context.Context, message *domain.Message) (int64, error)
	ReadMessagesFunc        func(ctx context.Context, chatRoomID, userID string, before *time.Time, limit int) ([]*domain.Message, error)
	UnreadMessagesFunc      func(ctx context.Context, chatRoomID, userID string, limit int) ([]*domain.Message, error)
	GetMessageTimestampFunc func(ctx context.Context, messageID string) (time.Time, bool, error)
	MarkAsReadFunc          func(ctx context.Context, userID, chatRoomID string, sel domain.MarkSelection) (int64, error)

	rooms        map[string]*domain.ChatRoom
	participants []*domain.Participant
	messages     []*domain.Message
	unread       map[string]map[string]bool // participant id -> message ids
	tick         time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:  make(map[string]*domain.ChatRoom),
		unread: make(map[string]map[string]bool),
		tick:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Chat rooms

func (m *MemoryStore) Create(ctx context.Context, room *domain.ChatRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.ChatRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if room, ok := m.rooms[id]; ok {
		return room, nil
	}
	return nil, domain.ErrChatRoomNotFound
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; !ok {
		return domain.ErrChatRoomNotFound
	}
	delete(m.rooms, id)

	kept := m.participants[:0]
	for _, p := range m.participants {
		if p.ChatRoomID == id {
			delete(m.unread, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	m.participants = kept

	msgs := m.messages[:0]
	for _, msg := range m.messages {
		if msg.ChatRoomID != id {
			msgs = append(msgs, msg)
		}
	}
	m.messages = msgs
	return nil
}

// Participants

func (m *MemoryStore) Add(ctx context.Context, participant *domain.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[participant.ChatRoomID]; !ok {
		return domain.ErrChatRoomNotFound
	}
	if m.participant(participant.ChatRoomID, participant.UserID) != nil {
		return domain.ErrAlreadyParticipant
	}

	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	if participant.JoinedAt.IsZero() {
		participant.JoinedAt = time.Now()
	}
	m.participants = append(m.participants, participant)
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, chatRoomID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.participants {
		if p.ChatRoomID == chatRoomID && p.UserID == userID {
			delete(m.unread, p.ID)
			m.participants = append(m.participants[:i], m.participants[i+1:]...)
			return nil
		}
	}
	return domain.ErrParticipantNotFound
}

func (m *MemoryStore) IsParticipant(ctx context.Context, chatRoomID, userID string) (bool, error) {
	if m.IsParticipantFunc != nil {
		return m.IsParticipantFunc(ctx, chatRoomID, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.participant(chatRoomID, userID) != nil, nil
}

func (m *MemoryStore) ListByChatRoom(ctx context.Context, chatRoomID string) ([]*domain.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*domain.Participant{}
	for _, p := range m.participants {
		if p.ChatRoomID == chatRoomID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

// Messages

func (m *MemoryStore) Append(ctx context.Context, message *domain.Message) (int64, error) {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	message.ID = uuid.NewString()
	message.Date = m.now()
	m.messages = append(m.messages, message)

	var markers int64
	for _, p := range m.participants {
		if p.ChatRoomID != message.ChatRoomID || p.UserID == message.SenderID {
			continue
		}
		if m.unread[p.ID] == nil {
			m.unread[p.ID] = make(map[string]bool)
		}
		m.unread[p.ID][message.ID] = true
		markers++
	}
	return markers, nil
}

func (m *MemoryStore) ReadMessages(ctx context.Context, chatRoomID, userID string, before *time.Time, limit int) ([]*domain.Message, error) {
	if m.ReadMessagesFunc != nil {
		return m.ReadMessagesFunc(ctx, chatRoomID, userID, before, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	markers := m.markersOf(chatRoomID, userID)
	result := []*domain.Message{}
	// newest first; insertion order breaks timestamp ties
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.ChatRoomID != chatRoomID || markers[msg.ID] {
			continue
		}
		if before != nil && !msg.Date.Before(*before) {
			continue
		}
		result = append(result, msg)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return truncate(result, limit), nil
}

func (m *MemoryStore) UnreadMessages(ctx context.Context, chatRoomID, userID string, limit int) ([]*domain.Message, error) {
	if m.UnreadMessagesFunc != nil {
		return m.UnreadMessagesFunc(ctx, chatRoomID, userID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	markers := m.markersOf(chatRoomID, userID)
	result := []*domain.Message{}
	for _, msg := range m.messages {
		if msg.ChatRoomID == chatRoomID && markers[msg.ID] {
			result = append(result, msg)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return truncate(result, limit), nil
}

func (m *MemoryStore) GetMessageTimestamp(ctx context.Context, messageID string) (time.Time, bool, error) {
	if m.GetMessageTimestampFunc != nil {
		return m.GetMessageTimestampFunc(ctx, messageID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, msg := range m.messages {
		if msg.ID == messageID {
			return msg.Date, true, nil
		}
	}
	return time.Time{}, false, nil
}

// Unread markers

func (m *MemoryStore) MarkAsRead(ctx context.Context, userID, chatRoomID string, sel domain.MarkSelection) (int64, error) {
	if m.MarkAsReadFunc != nil {
		return m.MarkAsReadFunc(ctx, userID, chatRoomID, sel)
	}
	if sel.IsEmpty() {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.participant(chatRoomID, userID)
	if p == nil {
		return 0, nil
	}

	markers := m.unread[p.ID]
	var cleared int64
	if sel.All {
		cleared = int64(len(markers))
		delete(m.unread, p.ID)
		return cleared, nil
	}
	for _, id := range sel.MessageIDs {
		if markers[id] {
			delete(markers, id)
			cleared++
		}
	}
	return cleared, nil
}

// IsUnread reports whether userID has an unread marker for messageID
func (m *MemoryStore) IsUnread(chatRoomID, userID, messageID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.markersOf(chatRoomID, userID)[messageID]
}

// MarkerCount returns the total number of unread markers held
func (m *MemoryStore) MarkerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, markers := range m.unread {
		n += len(markers)
	}
	return n
}

func (m *MemoryStore) participant(chatRoomID, userID string) *domain.Participant {
	for _, p := range m.participants {
		if p.ChatRoomID == chatRoomID && p.UserID == userID {
			return p
		}
	}
	return nil
}

func (m *MemoryStore) markersOf(chatRoomID, userID string) map[string]bool {
	if p := m.participant(chatRoomID, userID); p != nil {
		return m.unread[p.ID]
	}
	return nil
}

func (m *MemoryStore) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	m.tick = m.tick.Add(time.Millisecond)
	return m.tick
}

func truncate(messages []*domain.Message, limit int) []*domain.Message {
	if limit > 0 && len(messages) > limit {
		return messages[:limit]
	}
	return messages
}

// MockSessionRepository implements domain.SessionRepository for testing
type MockSessionRepository struct {
	mu sync.RWMutex

	GetByTokenFunc func(ctx context.Context, token string) (*domain.Session, error)

	Sessions map[string]*domain.Session
}

// NewMockSessionRepository creates a new MockSessionRepository with initialized maps
func NewMockSessionRepository(sessions ...*domain.Session) *MockSessionRepository {
	m := &MockSessionRepository{
		Sessions: make(map[string]*domain.Session),
	}
	for _, s := range sessions {
		m.Sessions[s.Token] = s
	}
	return m
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.Sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !session.ExpiresAt.After(time.Now()) {
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// MockEventPublisher records published chat events
type MockEventPublisher struct {
	mu sync.Mutex

	PublishMessageSentFunc  func(ctx context.Context, chatRoomID, senderID, messageID, text string, markers int64) error
	PublishMessagesReadFunc func(ctx context.Context, chatRoomID, userID string, cleared int64) error

	Sent []SentEvent
	Read []ReadEvent
}

// SentEvent records a PublishMessageSent call
type SentEvent struct {
	ChatRoomID string
	SenderID   string
	MessageID  string
	Text       string
	Markers    int64
}

// ReadEvent records a PublishMessagesRead call
type ReadEvent struct {
	ChatRoomID string
	UserID     string
	Cleared    int64
}

func (m *MockEventPublisher) PublishMessageSent(ctx context.Context, chatRoomID, senderID, messageID, text string, markers int64) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentEvent{chatRoomID, senderID, messageID, text, markers})
	m.mu.Unlock()

	if m.PublishMessageSentFunc != nil {
		return m.PublishMessageSentFunc(ctx, chatRoomID, senderID, messageID, text, markers)
	}
	return nil
}

func (m *MockEventPublisher) PublishMessagesRead(ctx context.Context, chatRoomID, userID string, cleared int64) error {
	m.mu.Lock()
	m.Read = append(m.Read, ReadEvent{chatRoomID, userID, cleared})
	m.mu.Unlock()

	if m.PublishMessagesReadFunc != nil {
		return m.PublishMessagesReadFunc(ctx, chatRoomID, userID, cleared)
	}
	return nil
}
