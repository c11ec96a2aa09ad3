// ABOUTME: Password hashing with argon2id in PHC string format, constant-time
// ABOUTME: verification, and the registration-time strength check.
package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters. The values follow the library's recommended draft-RFC
// first recommendation (64 MiB, 1 pass, 4 lanes).
const (
	argonMemory  = 64 * 1024
	argonTime    = 1
	argonThreads = 4
	argonSaltLen = 16
	argonKeyLen  = 32
)

// Password strength failures, surfaced at registration time.
var (
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrPasswordTooSimple     = errors.New("password needs at least 3 of: lowercase, uppercase, digits, punctuation")
	ErrPasswordCommonPattern = errors.New("password contains a common, easily guessed pattern")
)

// ErrHashMalformed indicates a stored hash that is not a parseable argon2id
// PHC string.
var ErrHashMalformed = errors.New("malformed password hash")

// HashPassword hashes a plaintext password with argon2id and a fresh random
// salt, returning the PHC-format string stored in the users table.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the stored PHC-format hash.
// The comparison is constant-time; any parse failure counts as a mismatch.
func VerifyPassword(password, encoded string) bool {
	salt, key, memory, time, threads, err := parsePHC(encoded)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

// parsePHC splits an argon2id PHC string into its salt, derived key, and cost
// parameters. Parameters are read from the hash, not the package constants,
// so hashes survive future cost changes.
func parsePHC(encoded string) (salt, key []byte, memory uint32, time uint32, threads uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, ErrHashMalformed
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, ErrHashMalformed
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, ErrHashMalformed
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, ErrHashMalformed
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, 0, 0, 0, ErrHashMalformed
	}
	return salt, key, memory, time, threads, nil
}

// commonPatterns are substrings that make a password trivially guessable
// regardless of its other characteristics.
var commonPatterns = []string{"password", "123456", "qwerty", "abc123", "admin"}

// CheckPasswordStrength validates a candidate password: minimum length 8,
// at least 3 of 4 character classes, and none of the common patterns.
func CheckPasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	var hasLower, hasUpper, hasDigit, hasPunct bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasPunct = true
		}
	}
	classes := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasPunct} {
		if ok {
			classes++
		}
	}
	if classes < 3 {
		return ErrPasswordTooSimple
	}

	lowered := strings.ToLower(password)
	for _, pattern := range commonPatterns {
		if strings.Contains(lowered, pattern) {
			return ErrPasswordCommonPattern
		}
	}
	return nil
}
