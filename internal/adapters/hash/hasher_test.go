package hash_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/snapkeep/internal/adapters/hash"
	"go.trai.ch/snapkeep/internal/core/domain"
)

func TestSHA256_Sum(t *testing.T) {
	h := hash.SHA256{}

	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h.Sum([]byte("abc")))
	assert.Equal(t, h.Sum([]byte("/data/BTCUSDT.json")), h.Sum([]byte("/data/BTCUSDT.json")))
	assert.NotEqual(t, h.Sum([]byte("/data/BTCUSDT.json")), h.Sum([]byte("/data/ETHUSDT.json")))
}

func TestXXHash_Sum(t *testing.T) {
	h := hash.XXHash{}

	// xxh64("") with seed 0
	assert.Equal(t, "ef46db3751d8e999", h.Sum(nil))
	assert.Len(t, h.Sum([]byte("abc")), 16)
	assert.NotEqual(t, h.Sum([]byte("a")), h.Sum([]byte("b")))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		want      any
	}{
		{"default", "", hash.SHA256{}},
		{"sha256", domain.HashSHA256, hash.SHA256{}},
		{"xxhash", domain.HashXXHash, hash.XXHash{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := hash.New(tt.algorithm)
			require.NoError(t, err)
			assert.IsType(t, tt.want, h)
		})
	}

	_, err := hash.New("md5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}
