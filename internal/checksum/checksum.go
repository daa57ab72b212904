// Package checksum digests document content for optimistic locking.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Match reports whether data digests to sum.
func Match(data []byte, sum string) bool {
	return Sum(data) == sum
}
