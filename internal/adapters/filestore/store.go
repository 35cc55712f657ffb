// Package filestore implements the content store on the local filesystem.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
)

// mergeThreshold is the history length at which the current file is folded into the history log.
const mergeThreshold = 3

var _ ports.ContentStore = (*Store)(nil)

// Options configures a Store.
type Options struct {
	// DataRoot is the directory Read looks in.
	DataRoot string
	// RootDataPath is the directory holding root data files, one subdirectory per timeframe.
	RootDataPath string
	// SpotTimeFrame is the timeframe used when a root data call passes none.
	SpotTimeFrame string
	// UAT enables root data and disables current-file reads.
	UAT bool
	// AtomicWrites writes through a temporary file and a rename.
	AtomicWrites bool
}

// Store implements ports.ContentStore with one pretty-printed JSON file per symbol
// and a compressed history log next to it.
type Store struct {
	opts   Options
	hasher ports.Hasher
	codec  ports.Codec
	logger ports.Logger
	tracer ports.Tracer
	mu     sync.Mutex
}

// NewStore creates a new Store.
func NewStore(opts Options, hasher ports.Hasher, codec ports.Codec, logger ports.Logger, tracer ports.Tracer) *Store {
	opts.DataRoot = filepath.Clean(opts.DataRoot)
	opts.RootDataPath = filepath.Clean(opts.RootDataPath)
	return &Store{
		opts:   opts,
		hasher: hasher,
		codec:  codec,
		logger: logger,
		tracer: tracer,
	}
}

// Write persists the snapshot carried by msg under msg.FullFolPath.
func (s *Store) Write(ctx context.Context, msg domain.WriteMessage) (err error) {
	_, span := s.tracer.Start(ctx, "store.write", ports.WithAttribute("symbol", msg.Symbol))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	snap, decodeErr := domain.DecodeSnapshot(msg.Data)
	if decodeErr != nil {
		s.logger.Error(zerr.With(zerr.With(decodeErr, "symbol", msg.Symbol), "path", msg.FullFolPath))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := domain.CurrentFilePath(msg.FullFolPath, msg.Symbol)
	id := s.hasher.Sum([]byte(filePath))
	if stored := snap.ID(); stored != "" && stored != id {
		s.logger.Debug(fmt.Sprintf("file id mismatch for %s: replacing %s with %s", filePath, stored, id))
	}
	snap.SetID(id)

	histories, histErr := snap.Histories()
	if histErr != nil {
		s.logger.Warn(fmt.Sprintf("histories of %s is not an array, skipping merge", msg.Symbol))
	}
	span.SetAttribute("histories", len(histories))

	if len(histories) >= mergeThreshold {
		if err := s.mergeHistory(domain.HistoryFilePath(filePath), histories[1:]); err != nil {
			return err
		}
		if err := snap.SetHistories(histories[:1]); err != nil {
			return err
		}
		span.SetAttribute("merged", true)
	}

	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreEncodeFailed.Error()), "path", filePath)
	}
	return s.writeFile(filePath, data)
}

// mergeHistory folds incoming entries into the history log at path.
// Incoming entries come first; structural duplicates keep their first occurrence.
func (s *Store) mergeHistory(path string, incoming []json.RawMessage) error {
	existing, err := s.readCompressedArray(path)
	if err != nil {
		return err
	}

	all := append(slices.Clone(incoming), existing...)
	unique, err := domain.DedupeEntries(all)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreEncodeFailed.Error()), "path", path)
	}
	return s.writeCompressedArray(path, unique)
}

// Read loads the current snapshot for symbol from the data root.
// With includeHistory the history log is appended after the current histories.
func (s *Store) Read(ctx context.Context, symbol string, includeHistory bool) (domain.Snapshot, error) {
	_, span := s.tracer.Start(ctx, "store.read", ports.WithAttribute("symbol", symbol))
	defer span.End()

	// UAT runs keep their data in the root data layout.
	if s.opts.UAT {
		return nil, nil
	}

	filePath := domain.CurrentFilePath(s.opts.DataRoot, symbol)
	data, err := os.ReadFile(filePath) //nolint:gosec // path is derived from the configured data root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", filePath)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		span.RecordError(err)
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreDecodeFailed.Error()), "path", filePath)
	}
	if snap == nil || !includeHistory {
		return snap, nil
	}

	logged, err := s.readCompressedArray(domain.HistoryFilePath(filePath))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if logged == nil {
		return snap, nil
	}

	current, err := snap.Histories()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreDecodeFailed.Error()), "path", filePath)
	}
	if err := snap.SetHistories(append(current, logged...)); err != nil {
		return nil, err
	}
	return snap, nil
}

// ReadRootData loads the root data array for symbol and timeframe.
func (s *Store) ReadRootData(_ context.Context, symbol, timeframe string) ([]json.RawMessage, error) {
	if !s.opts.UAT {
		return []json.RawMessage{}, nil
	}

	entries, err := s.readCompressedArray(s.rootDataPath(symbol, timeframe))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return []json.RawMessage{}, nil
	}
	return entries, nil
}

// WriteRootData persists the root data array for symbol and timeframe.
// Entries that are neither all objects nor all arrays are logged and dropped.
func (s *Store) WriteRootData(_ context.Context, symbol, timeframe string, entries []json.RawMessage) error {
	if !s.opts.UAT {
		return nil
	}
	if err := domain.ValidateRootData(entries); err != nil {
		s.logger.Error(zerr.With(err, "symbol", symbol))
		return nil
	}
	if entries == nil {
		entries = []json.RawMessage{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeCompressedArray(s.rootDataPath(symbol, timeframe), entries)
}

func (s *Store) rootDataPath(symbol, timeframe string) string {
	if timeframe == "" {
		timeframe = s.opts.SpotTimeFrame
	}
	return domain.RootDataFilePath(s.opts.RootDataPath, timeframe, symbol)
}

// readCompressedArray reads a compressed JSON array. A missing file yields nil.
// Files that are not compressed are read as plain JSON.
func (s *Store) readCompressedArray(path string) ([]json.RawMessage, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is derived from configured roots
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	data, err := s.codec.Decompress(raw)
	if err != nil {
		s.logger.Debug(fmt.Sprintf("%s is not compressed, reading as plain JSON", path))
		data = raw
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreDecodeFailed.Error()), "path", path)
	}
	if entries == nil {
		entries = []json.RawMessage{}
	}
	return entries, nil
}

func (s *Store) writeCompressedArray(path string, entries []json.RawMessage) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreEncodeFailed.Error()), "path", path)
	}
	compressed, err := s.codec.Compress(data)
	if err != nil {
		return zerr.With(err, "path", path)
	}
	return s.writeFile(path, compressed)
}

// writeFile replaces the content of path, creating parent directories as needed.
func (s *Store) writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dir)
	}

	if !s.opts.AtomicWrites {
		//nolint:gosec // path is derived from the message destination
		if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
		}
		return nil
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}
