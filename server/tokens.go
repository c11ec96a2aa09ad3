// ABOUTME: JWT access/refresh token issuance and verification (HS256), with the
// ABOUTME: user's ULID as the subject and a uuid jti per token.
package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/ulid"
)

// TokenKind distinguishes the two token types in a pair. A refresh token is
// never accepted where an access token is required, and vice versa.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// TokenPair is the login/refresh response payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// tokenClaims is the signed claim set: registered claims plus the token kind.
type tokenClaims struct {
	Kind TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// IssueTokenPair signs a fresh access/refresh pair for the given user.
func IssueTokenPair(secret, userID string, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	access, err := signToken(secret, userID, TokenAccess, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := signToken(secret, userID, TokenRefresh, refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}

func signToken(secret, userID string, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token of the expected kind and returns
// the user ID it was issued for. Every failure mode (bad signature, expiry,
// wrong kind, non-ULID subject) collapses to core.TokenInvalid so callers
// leak nothing about why verification failed.
func VerifyToken(secret, tokenString string, kind TokenKind) (string, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", core.TokenInvalid()
	}
	if claims.Kind != kind {
		return "", core.TokenInvalid()
	}
	if !ulid.IsValid(claims.Subject) {
		return "", core.TokenInvalid()
	}
	return claims.Subject, nil
}
