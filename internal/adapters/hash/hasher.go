// Package hash provides the content and cache-key hashers.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Hasher = (*SHA256)(nil)
	_ ports.Hasher = (*XXHash)(nil)
)

// SHA256 hashes with SHA-256 and renders lowercase hex.
type SHA256 struct{}

// Sum returns the hex SHA-256 digest of data.
func (SHA256) Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// XXHash hashes with XXH64 and renders 16 hex digits.
type XXHash struct{}

// Sum returns the hex XXH64 digest of data.
func (XXHash) Sum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// New returns the hasher for the named algorithm.
func New(algorithm string) (ports.Hasher, error) {
	switch algorithm {
	case domain.HashSHA256, "":
		return SHA256{}, nil
	case domain.HashXXHash:
		return XXHash{}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unknown hash algorithm"), "algorithm", algorithm)
	}
}
