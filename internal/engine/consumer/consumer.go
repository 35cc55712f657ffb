// Package consumer implements the polling queue consumer.
package consumer

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
)

// QueueState represents the state of a queue's drain loop.
type QueueState string

const (
	// StateIdle indicates the last fetch found the queue empty.
	StateIdle QueueState = "Idle"
	// StateDraining indicates the loop is working through messages.
	StateDraining QueueState = "Draining"
)

// HandlerFunc processes the body of one message.
type HandlerFunc func(ctx context.Context, body []byte) error

// Queue is a point-in-time view of a drained queue.
type Queue struct {
	Name      string
	State     QueueState
	Processed uint64
	Failed    uint64
}

type queue struct {
	name      string
	state     atomic.Value
	processed atomic.Uint64
	failed    atomic.Uint64
}

func (q *queue) snapshot() Queue {
	state, _ := q.state.Load().(QueueState)
	return Queue{
		Name:      q.name,
		State:     state,
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
	}
}

// Options tunes connection retries and polling.
type Options struct {
	// Retries is the number of extra connection attempts after the first failure.
	Retries int
	// RetryDelay is the fixed wait between connection attempts.
	RetryDelay time.Duration
	// PollInterval is the wait after a fetch finds the queue empty.
	PollInterval time.Duration
}

// Consumer owns one broker channel and at most one drain loop per queue name.
// Messages are acknowledged on receipt, before their handler runs.
type Consumer struct {
	broker ports.Broker
	logger ports.Logger
	tracer ports.Tracer
	opts   Options

	mu     sync.Mutex
	ch     ports.Channel
	queues map[string]*queue
	closed bool

	handlersMu sync.RWMutex
	handlers   map[string]HandlerFunc

	loopCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a Consumer. Nothing is dialled until Connect.
func New(broker ports.Broker, logger ports.Logger, tracer ports.Tracer, opts Options) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		broker:   broker,
		logger:   logger,
		tracer:   tracer,
		opts:     opts,
		queues:   make(map[string]*queue),
		handlers: make(map[string]HandlerFunc),
		loopCtx:  ctx,
		cancel:   cancel,
	}
}

// Handle registers the handler for messages on queue name.
// Queues with a handler are drained as soon as the consumer connects.
func (c *Consumer) Handle(name string, fn HandlerFunc) {
	c.handlersMu.Lock()
	c.handlers[name] = fn
	c.handlersMu.Unlock()
}

func (c *Consumer) handler(name string) HandlerFunc {
	c.handlersMu.RLock()
	defer c.handlersMu.RUnlock()
	return c.handlers[name]
}

// Connect opens the broker channel, retrying with a fixed delay, and starts
// drain loops for every queue with a registered handler.
func (c *Consumer) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConsumerClosed
	}

	if c.ch == nil {
		ch, err := c.dial(ctx)
		if err != nil {
			return err
		}
		c.ch = ch
	}
	c.logger.Info("Connected to message broker.")

	c.handlersMu.RLock()
	names := make([]string, 0, len(c.handlers))
	for name := range c.handlers {
		names = append(names, name)
	}
	c.handlersMu.RUnlock()
	slices.Sort(names)

	for _, name := range names {
		if err := c.ensureLoopLocked(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) dial(ctx context.Context) (ports.Channel, error) {
	for attempt := 0; ; attempt++ {
		c.logger.Info("Connecting to message broker...")
		ch, err := c.broker.Connect(ctx)
		if err == nil {
			return ch, nil
		}
		c.logger.Error(err)

		if attempt >= c.opts.Retries {
			c.logger.Warn("Failed to connect to message broker after multiple attempts.")
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrBrokerConnection, "retries exhausted"), "attempts", attempt+1), "cause", err.Error())
		}
		c.logger.Info(fmt.Sprintf("Retrying connection... (%d retries left)", c.opts.Retries-attempt))

		select {
		case <-ctx.Done():
			return nil, zerr.With(zerr.Wrap(domain.ErrBrokerConnection, ctx.Err().Error()), "attempts", attempt+1)
		case <-c.loopCtx.Done():
			return nil, domain.ErrConsumerClosed
		case <-time.After(c.opts.RetryDelay):
		}
	}
}

// AssertQueue declares the durable queue name.
func (c *Consumer) AssertQueue(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch == nil {
		return domain.ErrBrokerNotConnected
	}
	return c.ch.DeclareQueue(ctx, name)
}

// CheckBacklog fails with ErrQueueBusy while queue name holds pending messages,
// making sure a drain loop is working on them. The queue itself is not changed.
func (c *Consumer) CheckBacklog(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch == nil {
		return domain.ErrBrokerNotConnected
	}

	pending, err := c.ch.PendingCount(ctx, name)
	if err != nil {
		c.logger.Error(err)
		return err
	}
	if pending == 0 {
		c.logger.Info("No messages in queue " + name)
		return nil
	}

	if err := c.ensureLoopLocked(ctx, name); err != nil {
		return err
	}
	c.logger.Info(fmt.Sprintf("Messages exist in queue %s: %d", name, pending))

	busy := zerr.With(zerr.Wrap(domain.ErrQueueBusy, "queue has pending messages"), "queue", name)
	return zerr.With(busy, "pending", pending)
}

// Send publishes message to queue name with persistent delivery,
// starting the queue's drain loop first if it is not running.
func (c *Consumer) Send(ctx context.Context, name string, message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoopLocked(ctx, name); err != nil {
		return err
	}
	return c.ch.Publish(ctx, name, message)
}

// Publish declares queue name and publishes message without starting a drain loop.
// It serves processes that only produce, such as the CLI.
func (c *Consumer) Publish(ctx context.Context, name string, message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch == nil {
		return domain.ErrBrokerNotConnected
	}
	if err := c.ch.DeclareQueue(ctx, name); err != nil {
		return err
	}
	return c.ch.Publish(ctx, name, message)
}

// Pending returns the number of messages ready in queue name.
func (c *Consumer) Pending(ctx context.Context, name string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch == nil {
		return 0, domain.ErrBrokerNotConnected
	}
	return c.ch.PendingCount(ctx, name)
}

// Queues returns the drained queues ordered by name.
func (c *Consumer) Queues() []Queue {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Queue, 0, len(c.queues))
	for _, q := range c.queues {
		out = append(out, q.snapshot())
	}
	slices.SortFunc(out, func(a, b Queue) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Close stops every drain loop, then closes the channel.
func (c *Consumer) Close() error {
	c.cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch == nil {
		return nil
	}
	err := c.ch.Close()
	c.ch = nil
	return err
}

// ensureLoopLocked declares the queue and starts its drain loop once. Callers hold c.mu.
func (c *Consumer) ensureLoopLocked(ctx context.Context, name string) error {
	if c.closed {
		return domain.ErrConsumerClosed
	}
	if c.ch == nil {
		return domain.ErrBrokerNotConnected
	}
	if err := c.ch.DeclareQueue(ctx, name); err != nil {
		return err
	}
	if _, ok := c.queues[name]; ok {
		return nil
	}

	q := &queue{name: name}
	q.state.Store(StateIdle)
	c.queues[name] = q

	c.wg.Add(1)
	go c.drain(c.ch, q)
	return nil
}

func (c *Consumer) drain(ch ports.Channel, q *queue) {
	defer c.wg.Done()

	for c.loopCtx.Err() == nil {
		if c.step(ch, q) {
			continue
		}
		select {
		case <-c.loopCtx.Done():
			return
		case <-time.After(c.opts.PollInterval):
		}
	}
}

// step handles at most one message and reports whether one was found.
func (c *Consumer) step(ch ports.Channel, q *queue) bool {
	d, err := ch.Fetch(c.loopCtx, q.name)
	if err != nil {
		if c.loopCtx.Err() == nil {
			c.logger.Error(err)
		}
		return false
	}
	if d == nil {
		q.state.Store(StateIdle)
		return false
	}
	q.state.Store(StateDraining)

	if err := ch.Ack(c.loopCtx, d); err != nil {
		c.logger.Error(err)
	}
	c.dispatch(q, d)
	return true
}

func (c *Consumer) dispatch(q *queue, d *domain.Delivery) {
	ctx, span := c.tracer.Start(c.loopCtx, "queue.dispatch",
		ports.WithAttribute("queue", q.name),
		ports.WithAttribute("bytes", len(d.Body)),
	)
	defer span.End()

	if err := c.invoke(ctx, q.name, d.Body); err != nil {
		q.failed.Add(1)
		span.RecordError(err)
		c.logger.Error(zerr.With(err, "queue", q.name))
		return
	}
	q.processed.Add(1)
}

func (c *Consumer) invoke(ctx context.Context, name string, body []byte) (err error) {
	fn := c.handler(name)
	if fn == nil {
		c.logger.Warn(fmt.Sprintf("No handler for queue %s, dropping message", name))
		return nil
	}

	defer zerr.Defer(func(recovered error) {
		err = zerr.Wrap(recovered, domain.ErrHandlerPanic.Error())
	})
	return fn(ctx, body)
}
