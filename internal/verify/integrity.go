package verify

import (
	"crypto/subtle"
	"strings"
)

// CompareDigests classifies an observed content digest against a stored one.
// Unknown when either side is absent. The hex comparison is case-insensitive
// and constant-structure, so a mismatching digest cannot be probed byte by
// byte.
func CompareDigests(observed, stored string) Integrity {
	if observed == "" || stored == "" {
		return IntegrityUnknown
	}
	a := []byte(strings.ToLower(observed))
	b := []byte(strings.ToLower(stored))
	if len(a) != len(b) {
		return IntegrityMismatch
	}
	if subtle.ConstantTimeCompare(a, b) == 1 {
		return IntegrityMatch
	}
	return IntegrityMismatch
}
