package cache

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const requestIDLength = 32

// NewRequestID returns the first 33 hex chars of sha256 over a random
// 32-char hex token.
func NewRequestID() (string, error) {
	raw := make([]byte, requestIDLength/2)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(hex.EncodeToString(raw)))
	return hex.EncodeToString(sum[:])[:requestIDLength+1], nil
}
