// ABOUTME: Tests for JWT issue/verify: round-trips, kind separation, signature
// ABOUTME: and expiry rejection, and the ULID-subject requirement.
package server

import (
	"errors"
	"testing"
	"time"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/ulid"
)

const testSecret = "unit-test-secret"

func TestIssueVerifyRoundTrip(t *testing.T) {
	userID := ulid.Generate()
	pair, err := IssueTokenPair(testSecret, userID, time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want bearer", pair.TokenType)
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", pair.ExpiresIn)
	}

	got, err := VerifyToken(testSecret, pair.AccessToken, TokenAccess)
	if err != nil {
		t.Fatalf("VerifyToken(access): %v", err)
	}
	if got != userID {
		t.Errorf("access subject = %q, want %q", got, userID)
	}

	got, err = VerifyToken(testSecret, pair.RefreshToken, TokenRefresh)
	if err != nil {
		t.Fatalf("VerifyToken(refresh): %v", err)
	}
	if got != userID {
		t.Errorf("refresh subject = %q, want %q", got, userID)
	}
}

func TestVerifyTokenKindSeparation(t *testing.T) {
	pair, err := IssueTokenPair(testSecret, ulid.Generate(), time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}

	if _, err := VerifyToken(testSecret, pair.RefreshToken, TokenAccess); !isTokenInvalid(err) {
		t.Errorf("refresh token accepted as access: %v", err)
	}
	if _, err := VerifyToken(testSecret, pair.AccessToken, TokenRefresh); !isTokenInvalid(err) {
		t.Errorf("access token accepted as refresh: %v", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	pair, err := IssueTokenPair(testSecret, ulid.Generate(), time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}
	if _, err := VerifyToken("other-secret", pair.AccessToken, TokenAccess); !isTokenInvalid(err) {
		t.Errorf("token with wrong secret accepted: %v", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	pair, err := IssueTokenPair(testSecret, ulid.Generate(), -time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}
	if _, err := VerifyToken(testSecret, pair.AccessToken, TokenAccess); !isTokenInvalid(err) {
		t.Errorf("expired token accepted: %v", err)
	}
}

func TestVerifyTokenNonULIDSubject(t *testing.T) {
	pair, err := IssueTokenPair(testSecret, "not-a-ulid", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}
	if _, err := VerifyToken(testSecret, pair.AccessToken, TokenAccess); !isTokenInvalid(err) {
		t.Errorf("token with malformed subject accepted: %v", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	if _, err := VerifyToken(testSecret, "not.a.jwt", TokenAccess); !isTokenInvalid(err) {
		t.Errorf("garbage token accepted: %v", err)
	}
}

func isTokenInvalid(err error) bool {
	var apiErr *core.APIError
	return errors.As(err, &apiErr) && apiErr.Code == core.CodeTokenInvalid
}
