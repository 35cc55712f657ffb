package ports

// Hasher defines the interface for computing hashes.
// It is shared by content identities and cache keys.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Sum returns the hex digest of data.
	Sum(data []byte) string
}
