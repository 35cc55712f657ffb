package ports

import (
	"context"

	"go.trai.ch/snapkeep/internal/core/domain"
)

//go:generate mockgen -source=broker.go -destination=mocks/mock_broker.go -package=mocks

// Broker opens connections to a message broker.
type Broker interface {
	// Connect dials the broker and opens a channel.
	Connect(ctx context.Context) (Channel, error)
}

// Channel is an open connection and channel pair.
type Channel interface {
	// DeclareQueue declares a durable queue. Declaring an existing queue is a no-op.
	DeclareQueue(ctx context.Context, name string) error

	// PendingCount returns the number of messages ready in the queue without changing it.
	PendingCount(ctx context.Context, name string) (int, error)

	// Fetch returns the next message without blocking, or nil if the queue is empty.
	Fetch(ctx context.Context, name string) (*domain.Delivery, error)

	// Ack acknowledges a fetched message.
	Ack(ctx context.Context, d *domain.Delivery) error

	// Publish sends body to the queue with persistent delivery.
	Publish(ctx context.Context, name string, body []byte) error

	// Close closes the channel and then the connection.
	Close() error
}
