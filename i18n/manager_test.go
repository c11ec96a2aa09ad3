// ABOUTME: Tests for localized message lookup: fallback chain, parameter
// ABOUTME: substitution, metadata stripping, and Accept-Language negotiation.
package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

func testManager() *Manager {
	fsys := fstest.MapFS{
		"zh/user/errors.json": {Data: []byte(`{
			"metadata": {"module": "user"},
			"NOT_FOUND": "未找到用户：{user_id}",
			"NESTED": {"DEEP": "深层消息"}
		}`)},
		"zh/common/errors.json": {Data: []byte(`{"UNKNOWN_ERROR": "未知错误"}`)},
		"en/user/errors.json":   {Data: []byte(`{"NOT_FOUND": "User not found: {user_id}"}`)},
		"en/common/errors.json": {Data: []byte(`{}`)},
	}
	return NewManager(fsys, "zh")
}

func TestTextBasicLookup(t *testing.T) {
	m := testManager()
	got := m.Text("user.errors.NOT_FOUND", map[string]any{"user_id": 123}, "en")
	want := "User not found: 123"
	if got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}

func TestTextDefaultLocaleFallback(t *testing.T) {
	m := testManager()
	// common.errors.UNKNOWN_ERROR only exists in zh; en falls back.
	got := m.Text("common.errors.UNKNOWN_ERROR", nil, "en")
	if got != "未知错误" {
		t.Errorf("Text fallback = %q, want zh message", got)
	}
}

func TestTextMissingKeyReturnsTail(t *testing.T) {
	m := testManager()
	if got := m.Text("user.errors.NOPE", nil, "zh"); got != "NOPE" {
		t.Errorf("missing key: got %q, want %q", got, "NOPE")
	}
	if got := m.Text("malformed", nil, "zh"); got != "malformed" {
		t.Errorf("malformed key: got %q, want it echoed", got)
	}
}

func TestTextNestedKeys(t *testing.T) {
	m := testManager()
	if got := m.Text("user.errors.NESTED.DEEP", nil, "zh"); got != "深层消息" {
		t.Errorf("nested key: got %q", got)
	}
}

func TestTextMetadataNotAMessage(t *testing.T) {
	m := testManager()
	if got := m.Text("user.errors.metadata.module", nil, "zh"); got != "module" {
		t.Errorf("metadata lookup: got %q, want key tail", got)
	}
}

func TestEnsureLocalePrimarySubtag(t *testing.T) {
	m := testManager()
	if got := m.ensureLocale("zh-CN"); got != "zh" {
		t.Errorf("ensureLocale(zh-CN) = %q, want zh", got)
	}
	if got := m.ensureLocale("fr"); got != "zh" {
		t.Errorf("ensureLocale(fr) = %q, want default zh", got)
	}
}

func TestPreferredLocaleQueryWins(t *testing.T) {
	m := testManager()
	r := httptest.NewRequest("GET", "/api/v1/users/me?locale=en", nil)
	r.Header.Set("Accept-Language", "zh")
	if got := m.PreferredLocale(r); got != "en" {
		t.Errorf("PreferredLocale = %q, want en (query wins)", got)
	}
}

func TestPreferredLocaleCookie(t *testing.T) {
	m := testManager()
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "locale", Value: "en"})
	if got := m.PreferredLocale(r); got != "en" {
		t.Errorf("PreferredLocale = %q, want en (cookie)", got)
	}
}

func TestPreferredLocaleAcceptLanguage(t *testing.T) {
	m := testManager()
	cases := []struct {
		header string
		want   string
	}{
		{"en-US,en;q=0.9,zh;q=0.8", "en"},
		{"zh-CN,zh;q=0.9", "zh"},
		{"fr-FR,fr;q=0.9", "zh"},
		{"", "zh"},
		{"en;q=bogus,zh", "zh"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			r.Header.Set("Accept-Language", tc.header)
		}
		if got := m.PreferredLocale(r); got != tc.want {
			t.Errorf("PreferredLocale(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestParseAcceptLanguageOrdering(t *testing.T) {
	got := parseAcceptLanguage("zh;q=0.5, en;q=0.9, ja")
	want := []string{"ja", "en", "zh"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEmbeddedBundles(t *testing.T) {
	m := NewEmbedded("zh")
	if got := m.Text("auth.errors.INVALID_CREDENTIALS", nil, "en"); got != "Incorrect username or password" {
		t.Errorf("embedded en auth message: got %q", got)
	}
	if got := m.Text("db.errors.QUERY_FAILED", nil, "zh"); got != "数据库操作失败" {
		t.Errorf("embedded zh db message: got %q", got)
	}
}
