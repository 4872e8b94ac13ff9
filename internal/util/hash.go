// Package util holds small helpers shared across packages.
package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short stable identifier for text, used to correlate
// log lines for the same document without logging its content.
func Fingerprint(text string) string {
	hasher := sha256.New()
	hasher.Write([]byte(text))
	return hex.EncodeToString(hasher.Sum(nil))[:16] // Use first 16 chars of the hash
}
