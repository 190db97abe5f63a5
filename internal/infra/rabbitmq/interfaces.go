package rabbitmq

import "context"

type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

// Handler receives one decoded bus message. Returning an error only logs;
// the feed is at-least-once so a dropped message resurfaces via polling.
type Handler func(ctx context.Context, routingKey string, body []byte) error

type SubscriberInterface interface {
	Start(ctx context.Context, handler Handler) error
	Close()
}

var _ PublisherInterface = (*Publisher)(nil)
var _ SubscriberInterface = (*Subscriber)(nil)
