package domain

import (
	"bytes"
	"encoding/json"
	"math/big"

	"go.trai.ch/zerr"
)

const (
	// FieldID is the snapshot field holding the content identity.
	FieldID = "id"
	// FieldHistories is the snapshot field holding history entries, newest first.
	FieldHistories = "histories"
)

// Snapshot is the latest summary for one symbol.
// Domain fields are kept as raw JSON so they round-trip untouched.
type Snapshot map[string]json.RawMessage

// DecodeSnapshot parses data as a snapshot. It fails with ErrInvalidPayload unless
// data is a JSON object with at least one field.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if !isJSONObject(data) {
		return nil, ErrInvalidPayload
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, zerr.With(zerr.Wrap(ErrInvalidPayload, "malformed object"), "cause", err.Error())
	}
	if len(s) == 0 {
		return nil, ErrInvalidPayload
	}
	return s, nil
}

// ID returns the stored content identity, or "" if absent.
func (s Snapshot) ID() string {
	raw, ok := s[FieldID]
	if !ok {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

// SetID replaces the content identity.
func (s Snapshot) SetID(id string) {
	raw, _ := json.Marshal(id) //nolint:errchkjson // strings always marshal
	s[FieldID] = raw
}

// Histories returns the history entries. A missing or null field yields nil.
func (s Snapshot) Histories() ([]json.RawMessage, error) {
	raw, ok := s[FieldHistories]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, zerr.Wrap(err, "histories is not an array")
	}
	return entries, nil
}

// SetHistories replaces the history entries.
func (s Snapshot) SetHistories(entries []json.RawMessage) error {
	if entries == nil {
		entries = []json.RawMessage{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return zerr.Wrap(err, ErrStoreEncodeFailed.Error())
	}
	s[FieldHistories] = raw
	return nil
}

// CanonicalJSON re-encodes a JSON value with sorted object keys and compact spacing.
// Numbers are rewritten to their shortest exact decimal form, so 1, 1.0 and 1e0
// all become 1. Two values are structurally equal exactly when their canonical
// forms are byte-equal.
func CanonicalJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, zerr.Wrap(err, "invalid JSON value")
	}
	out, err := json.Marshal(normalizeNumbers(v))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to re-encode JSON value")
	}
	return out, nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalizeNumbers(child)
		}
		return t
	case json.Number:
		return canonicalNumber(t)
	default:
		return v
	}
}

// canonicalNumber compares by exact decimal value rather than float64, so
// integers past 2^53 keep every digit.
func canonicalNumber(n json.Number) json.Number {
	r, ok := new(big.Rat).SetString(n.String())
	if !ok {
		return n
	}
	if r.IsInt() {
		return json.Number(r.Num().String())
	}
	// A JSON literal is a finite decimal, so the denominator is 2^a * 5^b and
	// max(a, b) fraction digits render it exactly.
	return json.Number(r.FloatString(decimalPlaces(r.Denom())))
}

func decimalPlaces(denom *big.Int) int {
	d := new(big.Int).Set(denom)
	two, five, rem := big.NewInt(2), big.NewInt(5), new(big.Int)
	twos, fives := 0, 0
	for {
		if q, m := new(big.Int).QuoRem(d, two, rem); m.Sign() == 0 {
			d, twos = q, twos+1
			continue
		}
		if q, m := new(big.Int).QuoRem(d, five, rem); m.Sign() == 0 {
			d, fives = q, fives+1
			continue
		}
		return max(twos, fives)
	}
}

// DedupeEntries drops entries that are structurally equal to an earlier one.
// The returned entries are in canonical form, in first-seen order.
func DedupeEntries(entries []json.RawMessage) ([]json.RawMessage, error) {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		canonical, err := CanonicalJSON(entry)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[string(canonical)]; dup {
			continue
		}
		seen[string(canonical)] = struct{}{}
		unique = append(unique, canonical)
	}
	return unique, nil
}

// ValidateRootData checks that entries are all JSON objects or all JSON arrays.
// An empty slice is valid.
func ValidateRootData(entries []json.RawMessage) error {
	if len(entries) == 0 {
		return nil
	}
	allObjects, allArrays := true, true
	for _, entry := range entries {
		trimmed := bytes.TrimSpace(entry)
		allObjects = allObjects && isJSONObject(trimmed)
		allArrays = allArrays && len(trimmed) > 0 && trimmed[0] == '['
	}
	if !allObjects && !allArrays {
		return ErrInvalidRootData
	}
	return nil
}

// isJSONObject reports whether data holds a syntactically valid JSON object.
func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
