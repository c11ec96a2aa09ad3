// ABOUTME: Tests for argon2id hashing: round-trip verification, PHC format,
// ABOUTME: salt uniqueness, and the strength check's rejection rules.
package server

import (
	"errors"
	"strings"
	"testing"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3r-secret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("hash %q not in argon2id PHC format", hash)
	}
	if !VerifyPassword("Sup3r-secret!", hash) {
		t.Errorf("correct password rejected")
	}
	if VerifyPassword("Sup3r-secret?", hash) {
		t.Errorf("wrong password accepted")
	}
}

func TestHashSaltsAreUnique(t *testing.T) {
	h1, err := HashPassword("same-input-1A!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same-input-1A!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Errorf("two hashes of the same password are identical; salt not random")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	bad := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	}
	for _, h := range bad {
		if VerifyPassword("whatever", h) {
			t.Errorf("VerifyPassword accepted malformed hash %q", h)
		}
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		want     error
	}{
		{"short1!", ErrPasswordTooShort},
		{"alllowercase", ErrPasswordTooSimple},
		{"NoDigitsOrPunct", ErrPasswordTooSimple},
		{"MyPassword12", ErrPasswordCommonPattern},
		{"Qwerty123!", ErrPasswordCommonPattern},
		{"Admin-pan3l", ErrPasswordCommonPattern},
		{"Str0ng-enough", nil},
		{"xK9#mQ2pz", nil},
	}
	for _, tc := range cases {
		got := CheckPasswordStrength(tc.password)
		if !errors.Is(got, tc.want) {
			t.Errorf("CheckPasswordStrength(%q) = %v, want %v", tc.password, got, tc.want)
		}
	}
}
