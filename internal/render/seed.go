// Package render turns impact data into an image: it derives a per-commit
// seed, executes an embedded HTML template and screenshots the result.
package render

import (
	"crypto/sha256"
	"encoding/binary"
)

// Seed maps a commit hash to [0, 1): the first four bytes of the SHA-256
// digest of the hash string, big-endian, divided by 2^32.
func Seed(hash string) float64 {
	sum := sha256.Sum256([]byte(hash))
	return float64(binary.BigEndian.Uint32(sum[:4])) / (1 << 32)
}
