package ports

import "context"

// CacheBackend is one cache tier. Values are serialized JSON.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type CacheBackend interface {
	// Connect prepares the backend. It is safe to call repeatedly.
	Connect(ctx context.Context) error

	// Get returns the value stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte)

	// Name identifies the tier in logs.
	Name() string
}
