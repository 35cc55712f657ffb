// Package tiered provides the cache facade shared by every cache tier.
package tiered

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
)

// Cache exposes Connect, Get, Set and Memoize over a single backend.
// It behaves the same whichever tier the backend is.
type Cache struct {
	backend ports.CacheBackend
	hasher  ports.Hasher
	logger  ports.Logger
	tracer  ports.Tracer

	mu        sync.Mutex
	connected bool
}

// New creates a Cache over backend.
func New(backend ports.CacheBackend, hasher ports.Hasher, logger ports.Logger, tracer ports.Tracer) *Cache {
	return &Cache{
		backend: backend,
		hasher:  hasher,
		logger:  logger,
		tracer:  tracer,
	}
}

// Tier returns the name of the backing tier.
func (c *Cache) Tier() string {
	return c.backend.Name()
}

// Connect prepares the backend. Once it succeeds, later calls return at once;
// a failed attempt is retried on the next call.
func (c *Cache) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}
	if err := c.backend.Connect(ctx); err != nil {
		return err
	}
	c.connected = true
	return nil
}

// Get returns the raw JSON stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	return c.backend.Get(ctx, key)
}

// Set stores the raw JSON value under key.
func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	c.backend.Set(ctx, key, value)
}

// Close releases the backend if it holds connections.
func (c *Cache) Close() error {
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Key derives the cache key for args: the hash of their JSON encoding.
func (c *Cache) Key(args any) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", zerr.Wrap(domain.ErrCacheEncodeFailed, err.Error())
	}
	return c.hasher.Sum(data), nil
}

// Memoize wraps fn so that results are served from c when the same
// arguments were seen before. The first call connects the cache if nothing
// has yet. Errors returned by fn are never cached, and concurrent misses for
// one key may each call fn.
func Memoize[A, R any](c *Cache, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return func(ctx context.Context, args A) (R, error) {
		ctx, span := c.tracer.Start(ctx, "cache.memoize", ports.WithAttribute("tier", c.backend.Name()))
		defer span.End()

		if err := c.Connect(ctx); err != nil {
			span.RecordError(err)
			var zero R
			return zero, err
		}

		key, err := c.Key(args)
		if err != nil {
			span.RecordError(err)
			var zero R
			return zero, err
		}

		if raw, ok := c.backend.Get(ctx, key); ok {
			var cached R
			if err := json.Unmarshal(raw, &cached); err == nil {
				span.SetAttribute("hit", true)
				return cached, nil
			}
			c.logger.Warn("Discarding undecodable cache entry " + key)
		}
		span.SetAttribute("hit", false)

		result, err := fn(ctx, args)
		if err != nil {
			span.RecordError(err)
			return result, err
		}

		data, err := json.Marshal(result)
		if err != nil {
			c.logger.Error(zerr.With(zerr.Wrap(domain.ErrCacheEncodeFailed, err.Error()), "key", key))
			return result, nil
		}
		c.backend.Set(ctx, key, data)
		return result, nil
	}
}
