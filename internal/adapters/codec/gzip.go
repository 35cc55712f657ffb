// Package codec provides the compression codec for history logs.
package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Codec = (*Gzip)(nil)

// Gzip compresses with gzip. Output is readable by any gzip implementation.
type Gzip struct {
	level int
}

// NewGzip creates a gzip codec. A level of 0 selects the default compression.
func NewGzip(level int) (*Gzip, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid compression level"), "level", level)
	}
	return &Gzip{level: level}, nil
}

// Compress returns the gzip encoding of data.
func (g *Gzip) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrCompressFailed.Error())
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, zerr.Wrap(err, domain.ErrCompressFailed.Error())
	}
	if err := w.Close(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrCompressFailed.Error())
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func (g *Gzip) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.Wrap(domain.ErrDecompressFailed, err.Error())
	}
	defer r.Close() //nolint:errcheck // reader holds no resources beyond the buffer

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrDecompressFailed, err.Error())
	}
	return out, nil
}
