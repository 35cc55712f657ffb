package ports

// Codec compresses and decompresses stored payloads.
//
//go:generate mockgen -source=codec.go -destination=mocks/mock_codec.go -package=mocks
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}
