// Package cryptox holds the symmetric primitives used by the server: the
// authenticated cipher that turns link bindings into opaque tokens, and
// password hashing for the account store.
package cryptox

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of the configured link key.
const KeySize = 32

// linkKeyInfo separates the AEAD subkey from any other use of the
// configured key material.
const linkKeyInfo = "docshare/link-binding/v1"

var (
	// ErrIntegrity is the only error Decrypt returns for bad input:
	// altered, truncated, foreign-key and malformed tokens all look alike.
	ErrIntegrity = errors.New("token failed integrity check")

	// ErrInvalidKey is returned when the configured key is not KeySize bytes.
	ErrInvalidKey = fmt.Errorf("link key must be %d bytes", KeySize)
)

var tokenEncoding = base64.RawURLEncoding.Strict()

// LinkCipher encrypts short plaintexts into URL-safe tokens with
// XChaCha20-Poly1305. A token is base64url(nonce || ciphertext || tag),
// so it carries its own nonce and integrity tag.
//
// A LinkCipher is immutable after construction and safe for concurrent use.
type LinkCipher struct {
	aead cipher.AEAD
}

// NewLinkCipher derives the AEAD key from the process-wide link key with
// HKDF-SHA256. The same key must be configured on every restart or all
// previously issued links stop decrypting.
func NewLinkCipher(key []byte) (*LinkCipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	subkey := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(linkKeyInfo)), subkey); err != nil {
		return nil, fmt.Errorf("deriving link key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(subkey)
	if err != nil {
		return nil, fmt.Errorf("creating link cipher: %w", err)
	}

	return &LinkCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random 24-byte nonce.
func (c *LinkCipher) Encrypt(plaintext []byte) (string, error) {
	nonceSize := c.aead.NonceSize()

	buf := make([]byte, nonceSize, nonceSize+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(buf, buf[:nonceSize], plaintext, nil)
	return tokenEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt. Any failure is ErrIntegrity.
func (c *LinkCipher) Decrypt(token string) ([]byte, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrIntegrity
	}
	// the decoder skips CR/LF; only the canonical spelling is accepted
	if tokenEncoding.EncodeToString(raw) != token {
		return nil, ErrIntegrity
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return nil, ErrIntegrity
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, ErrIntegrity
	}
	return plaintext, nil
}

// ParseKey decodes a standard base64 link key from configuration.
func ParseKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64", ErrInvalidKey)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// GenerateKey returns a fresh random link key in the encoding ParseKey accepts.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
