// ABOUTME: Tests for the auth middleware: exempt paths, bearer validation,
// ABOUTME: context propagation, and the JSON 401 envelope.
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mealdash/mealdash/i18n"
	"github.com/mealdash/mealdash/ulid"
)

func authTestHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := UserIDFromContext(r.Context()); ok {
			seenUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
	mw := AuthMiddleware(testSecret, i18n.NewEmbedded("zh"))
	return mw(next), &seenUserID
}

func TestAuthMiddlewareExemptPaths(t *testing.T) {
	h, _ := authTestHandler(t)
	for _, path := range []string{"/", "/health", "/api/v1/auth/login", "/api/v1/auth/register"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("path %s: status = %d, want 200 without auth", path, rec.Code)
		}
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	h, _ := authTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body.Error.Code != "AUTH_TOKEN_EXPIRED" {
		t.Errorf("error code = %q, want AUTH_TOKEN_EXPIRED", body.Error.Code)
	}
	if body.Error.Message == "" {
		t.Errorf("error message empty, want localized text")
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	h, seen := authTestHandler(t)
	userID := ulid.Generate()
	pair, err := IssueTokenPair(testSecret, userID, time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seen != userID {
		t.Errorf("context user ID = %q, want %q", *seen, userID)
	}
}

func TestAuthMiddlewareRejectsRefreshTokenAsAccess(t *testing.T) {
	h, _ := authTestHandler(t)
	pair, err := IssueTokenPair(testSecret, ulid.Generate(), time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for refresh token on API route", rec.Code)
	}
}

func TestAuthMiddlewareIgnoresNonAPIRoutes(t *testing.T) {
	h, _ := authTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/static/logo.png", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for non-API path", rec.Code)
	}
}
