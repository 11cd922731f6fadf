// Package token issues opaque single-use tokens for email links.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Size is the number of random bytes behind every token (256 bits).
const Size = 32

// Generate returns a URL-safe random token. Uniqueness is enforced by the
// unique indexes on the token columns, not here.
func Generate() (string, error) {
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
