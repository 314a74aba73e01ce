package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// low round count keeps the suite fast; the format is the same
const testRounds = 1000

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse", testRounds)
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, strings.HasPrefix(hash, "$pbkdf2-sha256$1000$"))
	assert.True(t, VerifyPassword(hash, "correct horse"))
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same-password", testRounds)
	require.NoError(t, err)
	b, err := HashPassword("same-password", testRounds)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_SingleCharacterChange(t *testing.T) {
	t.Parallel()

	const plain = "s3cure-passw0rd"
	hash, err := HashPassword(plain, testRounds)
	require.NoError(t, err)

	for i := range plain {
		altered := []byte(plain)
		altered[i] ^= 0x01
		assert.False(t, VerifyPassword(hash, string(altered)), "altered at %d", i)
	}
	assert.False(t, VerifyPassword(hash, plain+"x"))
	assert.False(t, VerifyPassword(hash, plain[:len(plain)-1]))
}

func TestVerifyPassword_PasslibCompatible(t *testing.T) {
	t.Parallel()

	// pbkdf2_sha256 of "password", 1000 rounds, salt "0123456789abcdef"
	const legacy = "$pbkdf2-sha256$1000$MDEyMzQ1Njc4OWFiY2RlZg$hRRjgXWkW8ResfIvBP99J/T4vkgEmMRV/0tJTOjR59I"
	assert.True(t, VerifyPassword(legacy, "password"))
	assert.False(t, VerifyPassword(legacy, "Password"))

	hash, err := HashPassword("password", 1000)
	require.NoError(t, err)
	parts := strings.Split(hash, "$")
	require.Len(t, parts, 5)
	assert.NotContains(t, parts[3]+parts[4], "+")
	assert.NotContains(t, parts[3]+parts[4], "=")
}

func TestVerifyPassword_MalformedFailsClosed(t *testing.T) {
	t.Parallel()

	for _, h := range []string{
		"",
		"plaintext",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$pbkdf2-sha256$notanumber$c2FsdA$c3Vt",
		"$pbkdf2-sha256$1000$***$c3Vt",
		"$pbkdf2-sha256$1000$c2FsdA$",
	} {
		assert.False(t, VerifyPassword(h, "anything"), "hash %q", h)
	}
}

func TestHashPassword_RandomFailure(t *testing.T) {
	orig := randRead
	randRead = func(b []byte) (int, error) { return 0, errors.New("entropy exhausted") }
	t.Cleanup(func() { randRead = orig })

	_, err := HashPassword("whatever-long", testRounds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHashing)
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ValidatePassword("short"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword("1234567"), ErrWeakPassword)
	assert.NoError(t, ValidatePassword("12345678"))
}
