package utils

import (
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
)

// canonical marshals with sorted map keys so equal values hash equally.
var canonical = sonic.Config{SortMapKeys: true}.Froze()

// Hasher fingerprints envelope payloads with xxHash64. The host uses it to
// tell a repeated window-focused report from a real focus change.
type Hasher struct{}

// FastHasher returns the payload hasher.
func FastHasher() *Hasher {
	return &Hasher{}
}

// Hash fingerprints raw bytes.
func (h *Hasher) Hash(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// HashJSON fingerprints a JSON-serializable value. Map keys are sorted, so
// the result does not depend on field order.
func (h *Hasher) HashJSON(v any) (string, error) {
	data, err := canonical.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return h.Hash(data), nil
}

// ShortHash returns the first 8 characters of a hash for display
func ShortHash(full string) string {
	if len(full) < 8 {
		return full
	}
	return full[:8]
}
