// Package hash produces content digests for uploaded artifacts.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the lowercase hex sha256 digest of data. This is the
// content fingerprint stored at registration and recomputed at verification.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
