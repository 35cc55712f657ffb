package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestParseWriteMessage(t *testing.T) {
	body := []byte(`{"symbol":"BTC/USDT","data":{"close":100},"fullFolPath":"/data"}`)

	msg, err := domain.ParseWriteMessage(body)
	require.NoError(t, err)

	assert.Equal(t, "BTC/USDT", msg.Symbol)
	assert.Equal(t, "/data", msg.FullFolPath)
	assert.JSONEq(t, `{"close":100}`, string(msg.Data))
}

func TestParseWriteMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{"symbol":`},
		{name: "plain text", body: `hello`},
		{name: "array", body: `[{"symbol":"BTC/USDT"}]`},
		{name: "wrong field type", body: `{"symbol":42,"data":{},"fullFolPath":"/data"}`},
		{name: "missing symbol", body: `{"data":{"close":1},"fullFolPath":"/data"}`},
		{name: "missing path", body: `{"symbol":"BTC/USDT","data":{"close":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseWriteMessage([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidMessage), "got %v", err)
		})
	}
}

func TestParseWriteMessage_MetadataOnMissingPath(t *testing.T) {
	_, err := domain.ParseWriteMessage([]byte(`{"symbol":"ETH/USDT","data":{"a":1}}`))
	require.Error(t, err)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "ETH/USDT", zErr.Metadata()["symbol"])
}

func TestWriteMessage_Encode(t *testing.T) {
	msg := domain.WriteMessage{
		Symbol:      "ETH/USDT",
		Data:        []byte(`{"close":1.5}`),
		FullFolPath: "/var/data",
	}

	data, err := msg.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"ETH/USDT","data":{"close":1.5},"fullFolPath":"/var/data"}`, string(data))

	parsed, err := domain.ParseWriteMessage(data)
	require.NoError(t, err)
	assert.Equal(t, msg.Symbol, parsed.Symbol)
}
