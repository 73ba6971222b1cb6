package agents

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseResult is the outcome of a lenient JSON decode.
type ParseResult[T any] struct {
	Value T
	OK    bool
	Err   error
}

// Or returns the decoded value, or fallback when decoding failed.
func (r ParseResult[T]) Or(fallback T) T {
	if !r.OK {
		return fallback
	}
	return r.Value
}

// DecodeLenient decodes a column that may hold either a JSON document or a
// JSON string wrapping an encoded document. Empty input and null decode to
// the zero value.
func DecodeLenient[T any](raw []byte) ParseResult[T] {
	var zero T

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ParseResult[T]{Value: zero, OK: true}
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return ParseResult[T]{Err: fmt.Errorf("decode string wrapper: %w", err)}
		}
		if len(bytes.TrimSpace([]byte(inner))) == 0 {
			return ParseResult[T]{Value: zero, OK: true}
		}
		raw = []byte(inner)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return ParseResult[T]{Err: fmt.Errorf("decode document: %w", err)}
	}
	return ParseResult[T]{Value: v, OK: true}
}
