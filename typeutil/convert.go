// Package typeutil converts loosely typed values, such as request context
// values or decoded JSON maps, into concrete types.
package typeutil

import (
	"encoding/json"
	"fmt"
)

// Convert returns data as a T. Values that already are a T are returned as
// is; anything else goes through a JSON round trip, so map[string]any can
// become a struct with matching json tags.
func Convert[T any](data any) (T, error) {
	if v, ok := data.(T); ok {
		return v, nil
	}

	var result T
	raw, err := json.Marshal(data)
	if err != nil {
		return result, fmt.Errorf("typeutil: encode %T: %w", data, err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("typeutil: decode into %T: %w", result, err)
	}
	return result, nil
}

// MustConvert is like Convert but panics if the conversion fails.
func MustConvert[T any](data any) T {
	res, err := Convert[T](data)
	if err != nil {
		panic(err)
	}
	return res
}
