// Package memqueue implements an in-process message broker with the
// get/ack/requeue behaviour of a durable AMQP queue.
package memqueue

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Broker  = (*Broker)(nil)
	_ ports.Channel = (*Channel)(nil)
)

// Broker holds queues shared by every channel it opens.
type Broker struct {
	mu      sync.Mutex
	queues  map[string][][]byte
	nextTag uint64
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{queues: make(map[string][][]byte)}
}

// Connect opens a channel on the broker.
func (b *Broker) Connect(_ context.Context) (ports.Channel, error) {
	return &Channel{broker: b, unacked: make(map[uint64]unacked)}, nil
}

type unacked struct {
	queue string
	body  []byte
}

// Channel is a view on the broker. Messages fetched but not acked
// return to the front of their queue when the channel closes.
type Channel struct {
	broker  *Broker
	mu      sync.Mutex
	closed  bool
	unacked map[uint64]unacked
}

func (c *Channel) checkOpen() error {
	if c.closed {
		return domain.ErrBrokerNotConnected
	}
	return nil
}

// DeclareQueue creates the queue if it does not exist.
func (c *Channel) DeclareQueue(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return err
	}

	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	if _, ok := c.broker.queues[name]; !ok {
		c.broker.queues[name] = nil
	}
	return nil
}

// PendingCount returns the number of ready messages. Unknown queues are an error.
func (c *Channel) PendingCount(_ context.Context, name string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return 0, err
	}

	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	q, ok := c.broker.queues[name]
	if !ok {
		return 0, zerr.With(zerr.Wrap(domain.ErrQueueInspectFailed, "queue not found"), "queue", name)
	}
	return len(q), nil
}

// Fetch pops the next ready message, or returns nil when there is none.
func (c *Channel) Fetch(_ context.Context, name string) (*domain.Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	q, ok := c.broker.queues[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrQueueFetchFailed, "queue not found"), "queue", name)
	}
	if len(q) == 0 {
		return nil, nil
	}

	body := q[0]
	c.broker.queues[name] = q[1:]
	c.broker.nextTag++
	tag := c.broker.nextTag
	c.unacked[tag] = unacked{queue: name, body: body}

	return &domain.Delivery{Tag: tag, Queue: name, Body: body}, nil
}

// Ack settles a fetched message.
func (c *Channel) Ack(_ context.Context, d *domain.Delivery) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return err
	}

	if _, ok := c.unacked[d.Tag]; !ok {
		return zerr.With(zerr.Wrap(domain.ErrQueueAckFailed, "unknown delivery tag"), "tag", d.Tag)
	}
	delete(c.unacked, d.Tag)
	return nil
}

// Publish appends body to the queue. Messages for undeclared queues are dropped,
// as the default exchange does with unroutable messages.
func (c *Channel) Publish(_ context.Context, name string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return err
	}

	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	q, ok := c.broker.queues[name]
	if !ok {
		return nil
	}
	c.broker.queues[name] = append(q, slices.Clone(body))
	return nil
}

// Close requeues unacked messages and marks the channel closed.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	tags := make([]uint64, 0, len(c.unacked))
	for tag := range c.unacked {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	for i := len(tags) - 1; i >= 0; i-- {
		m := c.unacked[tags[i]]
		c.broker.queues[m.queue] = append([][]byte{m.body}, c.broker.queues[m.queue]...)
	}
	clear(c.unacked)
	return nil
}
