package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode unmarshals raw into T. A nil body yields the zero value.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("apiclient: decode: %w", err)
	}
	return out, nil
}

// DecodeList normalizes a list response. Recognized shapes are a bare array
// and an object with a data, items or rows array. A nil body is an empty list.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("apiclient: decode list: %w", err)
		}
		return out, nil
	}

	if trimmed[0] != '{' {
		return nil, ErrUnknownEnvelope
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("apiclient: decode list: %w", err)
	}
	for _, key := range []string{"data", "items", "rows"} {
		inner, ok := env[key]
		if !ok {
			continue
		}
		inner = bytes.TrimSpace(inner)
		if len(inner) == 0 || inner[0] != '[' {
			continue
		}
		var out []T
		if err := json.Unmarshal(inner, &out); err != nil {
			return nil, fmt.Errorf("apiclient: decode list %s: %w", key, err)
		}
		return out, nil
	}
	return nil, ErrUnknownEnvelope
}
