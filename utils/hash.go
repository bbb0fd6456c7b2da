package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the hex sha-256 of document content, used to spot
// duplicate uploads per owner.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
