package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheBackend = (*Redis)(nil)

// RedisOptions configures the Redis tier.
type RedisOptions struct {
	URL             string
	Prefix          string
	ConnectAttempts int
	InitialBackoff  time.Duration
}

// Redis is the remote cache tier.
type Redis struct {
	client    *redis.Client
	prefix    string
	attempts  int
	backoff   time.Duration
	logger    ports.Logger
	mu        sync.Mutex
	connected bool
}

// NewRedis creates a Redis tier. No connection is made until Connect.
func NewRedis(opts RedisOptions, logger ports.Logger) (*Redis, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, err.Error()), "key", "cache.url")
	}
	// Connect owns the retry policy.
	redisOpts.MaxRetries = -1

	attempts := opts.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Redis{
		client:   redis.NewClient(redisOpts),
		prefix:   opts.Prefix,
		attempts: attempts,
		backoff:  opts.InitialBackoff,
		logger:   logger,
	}, nil
}

// Connect pings the server until it answers, doubling the wait after each failure.
// Once connected, further calls return immediately.
func (r *Redis) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return nil
	}

	r.logger.Info("Connecting to Redis...")
	delay := r.backoff
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		lastErr = r.client.Ping(ctx).Err()
		if lastErr == nil {
			r.connected = true
			r.logger.Info("Connected to Redis")
			return nil
		}
		r.logger.Error(zerr.With(zerr.Wrap(lastErr, "redis connection error"), "attempt", attempt))

		left := r.attempts - attempt
		if left == 0 {
			break
		}
		r.logger.Info(fmt.Sprintf("Reconnecting to Redis in %s... Retries left: %d", delay, left))

		select {
		case <-ctx.Done():
			return zerr.With(zerr.Wrap(domain.ErrCacheConnection, ctx.Err().Error()), "attempts", attempt)
		case <-time.After(delay):
		}
		delay *= 2
	}

	return zerr.With(zerr.Wrap(domain.ErrCacheConnection, lastErr.Error()), "attempts", r.attempts)
}

// Get returns the value stored under key. Errors are logged and reported as a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error(zerr.With(zerr.Wrap(err, "error getting value from redis"), "key", key))
		}
		return nil, false
	}
	return v, true
}

// Set stores value under key without expiry. Errors are logged.
func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		r.logger.Error(zerr.With(zerr.Wrap(err, "error setting value in redis"), "key", key))
	}
}

// Name returns the tier name.
func (r *Redis) Name() string {
	return "redis"
}

// Close releases the client connections.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = false
	return r.client.Close()
}
