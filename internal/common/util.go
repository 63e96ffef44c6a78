package common

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomBytes returns size bytes from crypto/rand. It panics if the
// system random source fails, which crypto/rand treats as fatal.
func RandomBytes(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomToken returns size random bytes as unpadded base64url, safe for
// JSON bodies, query strings and database keys.
func RandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Wipe zeroes b in place. A nil slice is a no-op.
func Wipe(b []byte) {
	clear(b)
}
