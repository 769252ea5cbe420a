package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "chat.events"

	MessageSentKey  = "message.sent"
	MessagesReadKey = "messages.read"
)

// Event is the payload published to the chat.events exchange.
// Type equals the routing key.
type Event struct {
	Type       string `json:"type"`
	ChatRoomID string `json:"chat_room_id"`
	UserID     string `json:"user_id"`
	MessageID  string `json:"message_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Count      int64  `json:"count"` // markers created or cleared
	Timestamp  int64  `json:"timestamp"`
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	rmq := &RabbitMQ{
		conn:    conn,
		channel: ch,
	}

	if err := rmq.Setup(); err != nil {
		rmq.Close()
		return nil, err
	}

	return rmq, nil
}

// NewRabbitMQWithRetry dials with exponential backoff until maxElapsed passes
// or ctx is done
func NewRabbitMQWithRetry(ctx context.Context, url string, maxElapsed time.Duration) (*RabbitMQ, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = maxElapsed

	var rmq *RabbitMQ
	err := backoff.RetryNotify(func() error {
		var err error
		rmq, err = NewRabbitMQ(url)
		return err
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		slog.Warn("rabbitmq not ready, retrying",
			slog.String("error", err.Error()),
			slog.Duration("next_attempt", next))
	})
	if err != nil {
		return nil, err
	}
	return rmq, nil
}

func (r *RabbitMQ) Setup() error {
	if err := r.channel.ExchangeDeclare(
		EventsExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("failed to declare events exchange: %w", err)
	}

	slog.Info("rabbitmq setup completed successfully",
		slog.String("exchange", EventsExchange))
	return nil
}

// PublishMessageSent announces a stored message and the number of
// participants it is unread for
func (r *RabbitMQ) PublishMessageSent(ctx context.Context, chatRoomID, senderID, messageID, text string, markers int64) error {
	return r.Publish(ctx, &Event{
		Type:       MessageSentKey,
		ChatRoomID: chatRoomID,
		UserID:     senderID,
		MessageID:  messageID,
		Text:       text,
		Count:      markers,
		Timestamp:  time.Now().Unix(),
	})
}

// PublishMessagesRead announces that a participant cleared unread markers
func (r *RabbitMQ) PublishMessagesRead(ctx context.Context, chatRoomID, userID string, cleared int64) error {
	return r.Publish(ctx, &Event{
		Type:       MessagesReadKey,
		ChatRoomID: chatRoomID,
		UserID:     userID,
		Count:      cleared,
		Timestamp:  time.Now().Unix(),
	})
}

func (r *RabbitMQ) Publish(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	r.mu.Lock()
	err = r.channel.PublishWithContext(
		ctx,
		EventsExchange,
		event.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Unix(event.Timestamp, 0),
		},
	)
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("published chat event",
		slog.String("type", event.Type),
		slog.String("chat_room_id", event.ChatRoomID))
	return nil
}

func (r *RabbitMQ) IsClosed() bool {
	return r.conn == nil || r.conn.IsClosed()
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishMessageSent(context.Context, string, string, string, string, int64) error {
	return nil
}

func (NopPublisher) PublishMessagesRead(context.Context, string, string, int64) error {
	return nil
}
