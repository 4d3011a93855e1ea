package confloader

import (
	"errors"
	"strings"
)

// ErrReadBytesNotSupported is returned by ReadBytes on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form")

// mapProvider is a koanf.Provider over an in-memory map. Keys may be
// dotted paths.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

func (m mapProvider) Read() (map[string]any, error) {
	return unflatten(m), nil
}

// unflatten expands dotted keys into nested maps.
func unflatten(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, v := range in {
		cur := out
		parts := strings.Split(key, ".")
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = v
	}
	return out
}
