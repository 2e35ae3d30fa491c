package kv

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey turns an arbitrary string (usually a URL) into a fixed-size key part.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
