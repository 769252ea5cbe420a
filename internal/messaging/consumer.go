package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// EventConsumer reads chat events through an exclusive, auto-deleted queue
type EventConsumer struct {
	rmq         *RabbitMQ
	routingKeys []string
}

// NewEventConsumer binds to the given routing keys; none means every event
func NewEventConsumer(rmq *RabbitMQ, routingKeys ...string) *EventConsumer {
	if len(routingKeys) == 0 {
		routingKeys = []string{"#"}
	}
	return &EventConsumer{
		rmq:         rmq,
		routingKeys: routingKeys,
	}
}

// Start consumes until ctx is done or the channel closes, calling handle for
// every decoded event. It returns once the queue is bound.
func (c *EventConsumer) Start(ctx context.Context, handle func(context.Context, *Event)) error {
	queue, err := c.rmq.channel.QueueDeclare(
		"",    // auto-generated name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare events queue: %w", err)
	}

	for _, key := range c.routingKeys {
		if err := c.rmq.channel.QueueBind(
			queue.Name,     // queue name
			key,            // routing key
			EventsExchange, // exchange
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to bind events queue to %q: %w", key, err)
		}
	}

	msgs, err := c.rmq.channel.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	slog.Info("started consuming chat events",
		slog.String("queue", queue.Name),
		slog.String("exchange", EventsExchange))

	go func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("stopping event consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Warn("event consumer channel closed")
					return
				}

				var event Event
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					slog.Error("error unmarshaling event",
						slog.String("error", err.Error()),
						slog.String("routing_key", msg.RoutingKey))
					continue
				}

				handle(ctx, &event)
			}
		}
	}()

	return nil
}
