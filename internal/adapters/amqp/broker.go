// Package amqp implements the message broker port on RabbitMQ.
package amqp

import (
	"context"
	"sync"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
)

const contentType = "application/json"

var (
	_ ports.Broker  = (*Broker)(nil)
	_ ports.Channel = (*Channel)(nil)
)

// channel is the subset of *amqp091.Channel used by the adapter.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueDeclarePassive(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	Get(queue string, autoAck bool) (amqp091.Delivery, bool, error)
	Ack(tag uint64, multiple bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// connection is the subset of *amqp091.Connection used by the adapter.
type connection interface {
	channel() (channel, error)
	Close() error
}

type dialFunc func(url string) (connection, error)

type liveConnection struct {
	*amqp091.Connection
}

func (c liveConnection) channel() (channel, error) {
	ch, err := c.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dial(url string) (connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	return liveConnection{conn}, nil
}

// Broker dials RabbitMQ.
type Broker struct {
	url  string
	dial dialFunc
}

// NewBroker creates a Broker for the AMQP URL.
func NewBroker(url string) *Broker {
	return &Broker{url: url, dial: dial}
}

// Connect opens a connection and a channel on it.
func (b *Broker) Connect(_ context.Context) (ports.Channel, error) {
	conn, err := b.dial(b.url)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrBrokerConnection.Error())
	}
	ch, err := conn.channel()
	if err != nil {
		_ = conn.Close()
		return nil, zerr.Wrap(err, domain.ErrBrokerConnection.Error())
	}
	return &Channel{conn: conn, ch: ch}, nil
}

// Channel is an open AMQP connection and channel.
type Channel struct {
	mu   sync.Mutex
	conn connection
	ch   channel
}

// DeclareQueue declares a durable queue.
func (c *Channel) DeclareQueue(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrQueueDeclareFailed.Error()), "queue", name)
	}
	return nil
}

// PendingCount inspects the queue on a short-lived channel, since a failed
// passive declare closes the channel it runs on.
func (c *Channel) PendingCount(_ context.Context, name string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	probe, err := c.conn.channel()
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrQueueInspectFailed.Error()), "queue", name)
	}
	defer probe.Close() //nolint:errcheck // probe channel may already be closed by the server

	q, err := probe.QueueDeclarePassive(name, true, false, false, false, nil)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrQueueInspectFailed.Error()), "queue", name)
	}
	return q.Messages, nil
}

// Fetch gets one message without blocking. It returns nil when the queue is empty.
func (c *Channel) Fetch(_ context.Context, name string) (*domain.Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok, err := c.ch.Get(name, false)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrQueueFetchFailed.Error()), "queue", name)
	}
	if !ok {
		return nil, nil
	}
	return &domain.Delivery{Tag: d.DeliveryTag, Queue: name, Body: d.Body}, nil
}

// Ack acknowledges a single delivery.
func (c *Channel) Ack(_ context.Context, d *domain.Delivery) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.Ack(d.Tag, false); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrQueueAckFailed.Error()), "queue", d.Queue)
	}
	return nil
}

// Publish sends body to the queue through the default exchange with persistent delivery.
func (c *Channel) Publish(ctx context.Context, name string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.ch.PublishWithContext(ctx, "", name, false, false, amqp091.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp091.Persistent,
		Body:         body,
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrQueuePublishFailed.Error()), "queue", name)
	}
	return nil
}

// Close closes the channel and then the connection.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	chErr := c.ch.Close()
	connErr := c.conn.Close()
	if chErr != nil {
		return zerr.Wrap(chErr, "failed to close channel")
	}
	if connErr != nil {
		return zerr.Wrap(connErr, "failed to close connection")
	}
	return nil
}
