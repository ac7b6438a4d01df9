package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serialises a cache payload as msgpack. Binary payloads keep Redis
// memory noticeably smaller than JSON for the stats aggregates.
func Encode(v any) (string, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cache encode: %w", err)
	}
	return string(data), nil
}

// Decode deserialises a msgpack cache payload into out.
func Decode(payload string, out any) error {
	if err := msgpack.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("cache decode: %w", err)
	}
	return nil
}
