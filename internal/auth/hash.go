package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashToken returns the SHA-256 hash of a raw bearer token as a hex
// string. Only this hash is ever persisted, so a stolen database row
// cannot be replayed as a bearer token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// tokenMatches compares a raw bearer token against a stored hash in
// constant time.
func tokenMatches(raw, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(raw)), []byte(storedHash)) == 1
}
