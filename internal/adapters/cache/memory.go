// Package cache provides the cache tiers: an in-process map and Redis.
package cache

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/snapkeep/internal/core/ports"
)

var _ ports.CacheBackend = (*Memory)(nil)

// Memory is an in-process cache tier. Entries never expire.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
	logger  ports.Logger
}

// NewMemory creates an empty Memory cache.
func NewMemory(logger ports.Logger) *Memory {
	return &Memory{
		entries: make(map[string][]byte),
		logger:  logger,
	}
}

// Connect has nothing to establish.
func (m *Memory) Connect(_ context.Context) error {
	m.logger.Info("Connected to in-memory cache.")
	return nil
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Set stores value under key, replacing any previous value.
func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = slices.Clone(value)
}

// Name returns the tier name.
func (m *Memory) Name() string {
	return "memory"
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
