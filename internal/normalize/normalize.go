// Package normalize canonicalizes free-text identity fields for comparison.
package normalize

import "strings"

// Field lower-cases s and strips all whitespace. The result is only ever used
// for matching, never displayed back to a caller.
func Field(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

// ID canonicalizes a certificate id for case-insensitive lookup. Unlike Field
// it preserves interior spacing, since ids are compared exactly.
func ID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
