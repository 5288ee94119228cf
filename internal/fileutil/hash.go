package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeContent makes template text comparable across checkouts: line
// endings become LF and surrounding whitespace is dropped.
func NormalizeContent(content string) string {
	return strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
}

// HashContent returns a short digest of the normalized content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(NormalizeContent(content)))
	return hex.EncodeToString(sum[:])[:16]
}

// SameContent reports whether a and b only differ in line endings or
// surrounding whitespace.
func SameContent(a, b string) bool {
	return NormalizeContent(a) == NormalizeContent(b)
}
