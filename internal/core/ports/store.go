package ports

import (
	"context"
	"encoding/json"

	"go.trai.ch/snapkeep/internal/core/domain"
)

// ContentStore defines the interface for persisting per-symbol snapshots and their history.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ContentStore interface {
	// Write persists a snapshot from the write queue.
	// An invalid payload is logged and dropped; only storage failures are returned.
	Write(ctx context.Context, msg domain.WriteMessage) error

	// Read loads the current snapshot for symbol.
	// Returns nil, nil if the symbol has no current file.
	Read(ctx context.Context, symbol string, includeHistory bool) (domain.Snapshot, error)

	// ReadRootData loads the root data array for symbol and timeframe.
	// Outside UAT mode it returns an empty slice.
	ReadRootData(ctx context.Context, symbol, timeframe string) ([]json.RawMessage, error)

	// WriteRootData persists the root data array for symbol and timeframe.
	// Outside UAT mode it does nothing.
	WriteRootData(ctx context.Context, symbol, timeframe string, entries []json.RawMessage) error
}
