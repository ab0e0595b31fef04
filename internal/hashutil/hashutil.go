package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// HashStrings returns a SHA256 hash of the provided strings with newline separators.
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashUnordered hashes the parts after sorting a copy, so argument order does not matter.
func HashUnordered(parts ...string) string {
	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Strings(sorted)
	return HashStrings(sorted...)
}
