package mq

import "context"

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Returning an error signals a nack/redelivery.
type Handler func(ctx context.Context, msg Message) error

// Broker is the broker-agnostic surface used by the audit publisher. The
// concrete backend (RabbitMQ or Pub/Sub) is chosen by configuration.
type Broker interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}
