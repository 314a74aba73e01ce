package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Hashes use the passlib-compatible modular-crypt form
//
//	$pbkdf2-sha256$<rounds>$<salt>$<checksum>
//
// where salt and checksum are "adapted base64" (standard alphabet, '.'
// instead of '+', no padding). Hashes created by earlier deployments verify
// unchanged.
const (
	hashIdent           = "pbkdf2-sha256"
	saltLen             = 16
	keyLen              = 32
	DefaultPBKDF2Rounds = 29000
	MinPasswordLength   = 8
)

var (
	// ErrHashing means the random source failed while salting a password.
	ErrHashing = errors.New("password hashing failed")
	// ErrWeakPassword is returned by ValidatePassword.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	errMalformedHash = errors.New("malformed password hash")
)

// randRead is swapped in tests to simulate a failing random source.
var randRead = rand.Read

// ValidatePassword enforces the password policy before hashing.
func ValidatePassword(plain string) error {
	if len([]rune(plain)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns a salted PBKDF2-SHA256 hash using the given number of
// rounds (DefaultPBKDF2Rounds when rounds <= 0).
func HashPassword(plain string, rounds int) (string, error) {
	if rounds <= 0 {
		rounds = DefaultPBKDF2Rounds
	}
	salt := make([]byte, saltLen)
	if _, err := randRead(salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	sum := pbkdf2.Key([]byte(plain), salt, rounds, keyLen, sha256.New)
	return fmt.Sprintf("$%s$%d$%s$%s", hashIdent, rounds, ab64Encode(salt), ab64Encode(sum)), nil
}

// VerifyPassword compares plain against hash in constant time. A malformed
// hash never verifies; the parse error is logged rather than returned.
func VerifyPassword(hash, plain string) bool {
	rounds, salt, want, err := parseHash(hash)
	if err != nil {
		slog.Warn("password verify failed", "error", err)
		return false
	}
	got := pbkdf2.Key([]byte(plain), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func parseHash(hash string) (int, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != hashIdent {
		return 0, nil, nil, errMalformedHash
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return 0, nil, nil, fmt.Errorf("%w: bad rounds %q", errMalformedHash, parts[2])
	}
	salt, err := ab64Decode(parts[3])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: salt: %v", errMalformedHash, err)
	}
	sum, err := ab64Decode(parts[4])
	if err != nil || len(sum) == 0 {
		return 0, nil, nil, fmt.Errorf("%w: checksum", errMalformedHash)
	}
	return rounds, salt, sum, nil
}

func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
