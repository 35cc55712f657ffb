// Package app implements the application layer for snapkeep.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/snapkeep/internal/engine/consumer"
	"go.trai.ch/snapkeep/internal/engine/tiered"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	consumer   *consumer.Consumer
	cache      *tiered.Cache
	store      ports.ContentStore
	logger     ports.Logger
	writeQueue string
}

// New creates a new App instance.
func New(
	c *consumer.Consumer,
	cache *tiered.Cache,
	store ports.ContentStore,
	log ports.Logger,
	writeQueue string,
) *App {
	return &App{
		consumer:   c,
		cache:      cache,
		store:      store,
		logger:     log,
		writeQueue: writeQueue,
	}
}

// Serve connects the broker and the cache, drains the write queue into the
// content store and blocks until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	a.consumer.Handle(a.writeQueue, a.handleWrite)
	defer a.close()

	// 1. Connect broker and cache concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.consumer.Connect(gctx)
	})
	g.Go(func() error {
		return a.cache.Connect(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// 2. Report leftovers; the drain loop is already working on them
	if err := a.consumer.CheckBacklog(ctx, a.writeQueue); err != nil && !errors.Is(err, domain.ErrQueueBusy) {
		return err
	}

	a.logger.Info(fmt.Sprintf("Serving queue %s with %s cache.", a.writeQueue, a.cache.Tier()))
	<-ctx.Done()
	a.logger.Info("Shutting down.")
	return nil
}

func (a *App) handleWrite(ctx context.Context, body []byte) error {
	msg, err := domain.ParseWriteMessage(body)
	if err != nil {
		return err
	}
	return a.store.Write(ctx, msg)
}

// Send publishes body to queue. An empty queue name selects the write queue.
func (a *App) Send(ctx context.Context, queue string, body []byte) error {
	if queue == "" {
		queue = a.writeQueue
	}
	if !json.Valid(body) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidMessage, "body is not valid JSON"), "queue", queue)
	}
	if queue == a.writeQueue {
		if _, err := domain.ParseWriteMessage(body); err != nil {
			return err
		}
	}

	defer a.close()
	if err := a.consumer.Connect(ctx); err != nil {
		return err
	}
	return a.consumer.Publish(ctx, queue, body)
}

// CheckBacklog fails with ErrQueueBusy while queue holds pending messages.
// An empty queue name selects the write queue.
func (a *App) CheckBacklog(ctx context.Context, queue string) error {
	if queue == "" {
		queue = a.writeQueue
	}

	defer a.close()
	if err := a.consumer.Connect(ctx); err != nil {
		return err
	}
	pending, err := a.consumer.Pending(ctx, queue)
	if err != nil {
		return err
	}
	if pending > 0 {
		busy := zerr.With(zerr.Wrap(domain.ErrQueueBusy, "queue has pending messages"), "queue", queue)
		return zerr.With(busy, "pending", pending)
	}
	a.logger.Info("No messages in queue " + queue)
	return nil
}

// Read returns the current snapshot for symbol.
func (a *App) Read(ctx context.Context, symbol string, includeHistory bool) (domain.Snapshot, error) {
	snap, err := a.store.Read(ctx, symbol, includeHistory)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSnapshotNotFound, "no current file"), "symbol", symbol)
	}
	return snap, nil
}

// CacheGet returns the raw JSON stored under key.
func (a *App) CacheGet(ctx context.Context, key string) (json.RawMessage, error) {
	defer a.close()
	if err := a.cache.Connect(ctx); err != nil {
		return nil, err
	}
	value, ok := a.cache.Get(ctx, key)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheMiss, "key not found"), "key", key)
	}
	return value, nil
}

// CacheSet stores the JSON value under key.
func (a *App) CacheSet(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return zerr.With(zerr.Wrap(domain.ErrCacheEncodeFailed, "value is not valid JSON"), "key", key)
	}

	defer a.close()
	if err := a.cache.Connect(ctx); err != nil {
		return err
	}
	a.cache.Set(ctx, key, value)
	return nil
}

func (a *App) close() {
	if err := errors.Join(a.consumer.Close(), a.cache.Close()); err != nil {
		a.logger.Error(err)
	}
}
