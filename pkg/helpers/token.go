package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const (
	RefreshTokenBytes = 64
	EmailTokenBytes   = 32
)

// GenerateSecureToken returns n random bytes rendered as lowercase hex.
func GenerateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken is the one-way form under which opaque tokens are stored.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
