package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword([]byte("correct horse"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"), hash)

	ok, err := VerifyPassword(hash, []byte("correct horse"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, []byte("battery staple"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword([]byte("pw"))
	require.NoError(t, err)
	b, err := HashPassword([]byte("pw"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two hashes of the same password must use different salts")
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$***$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
	} {
		_, err := VerifyPassword(encoded, []byte("pw"))
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}
