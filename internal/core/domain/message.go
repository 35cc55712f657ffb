package domain

import (
	"encoding/json"

	"go.trai.ch/zerr"
)

// WriteMessage is the payload carried by the write queue.
type WriteMessage struct {
	// Symbol is the trading pair, e.g. "BTC/USDT".
	Symbol string `json:"symbol"`
	// Data is the snapshot object to persist.
	Data json.RawMessage `json:"data"`
	// FullFolPath is the destination directory of the current file.
	FullFolPath string `json:"fullFolPath"`
}

// ParseWriteMessage decodes a queue message body into a WriteMessage.
// The body must be a JSON object naming a symbol and a destination directory.
// The data field is validated later by the content store.
func ParseWriteMessage(body []byte) (WriteMessage, error) {
	var msg WriteMessage
	if !isJSONObject(body) {
		return msg, zerr.Wrap(ErrInvalidMessage, "message is not a JSON object")
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, zerr.With(zerr.Wrap(ErrInvalidMessage, "malformed message fields"), "cause", err.Error())
	}
	if msg.Symbol == "" {
		return msg, zerr.Wrap(ErrInvalidMessage, "missing symbol")
	}
	if msg.FullFolPath == "" {
		return msg, zerr.With(zerr.Wrap(ErrInvalidMessage, "missing fullFolPath"), "symbol", msg.Symbol)
	}
	return msg, nil
}

// Encode serializes the message for publishing.
func (m WriteMessage) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, zerr.Wrap(err, ErrInvalidMessage.Error())
	}
	return data, nil
}
