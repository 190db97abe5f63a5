package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// Subscriber consumes order events from a topic exchange. Delivery is
// at-least-once with no ordering guarantee; handlers must be idempotent.
type Subscriber struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func NewSubscriber(amqpURL, exchange, bindingKey string) (*Subscriber, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %v", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %v", err)
	}

	q, err := channel.QueueDeclare(
		"",
		false,
		true,
		true,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %v", err)
	}

	if err := channel.QueueBind(q.Name, bindingKey, exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %v", err)
	}

	return &Subscriber{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
	}, nil
}

// Start blocks consuming deliveries until ctx is cancelled or the channel
// closes. Malformed envelopes are logged and dropped.
func (s *Subscriber) Start(ctx context.Context, handler Handler) error {
	deliveries, err := s.channel.Consume(
		s.queue,
		"",
		true,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var env Envelope
			if err := json.Unmarshal(d.Body, &env); err != nil {
				log.Printf("dropping malformed event on %s: %v", d.RoutingKey, err)
				continue
			}
			pattern := env.Pattern
			if pattern == "" {
				pattern = d.RoutingKey
			}
			if err := handler(ctx, pattern, env.Data); err != nil {
				log.Printf("event handler failed for %s: %v", pattern, err)
			}
		}
	}
}

func (s *Subscriber) Close() {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}
