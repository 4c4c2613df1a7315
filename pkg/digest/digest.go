// Package digest computes and compares SHA-256 content digests.
// The digest of a file stands in for its contents when checking for
// tampering, so it needs to be a cryptographic hash.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
)

// Sum reads r until EOF and returns the SHA-256 digest of everything
// read, hex-encoded in lowercase.
func Sum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal compares two hex-encoded digests, ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}
