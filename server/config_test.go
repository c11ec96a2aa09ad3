// ABOUTME: Tests for configuration loading: defaults, YAML overlay, env
// ABOUTME: overrides, and the bind/secret security constraints.
package server

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearMealdashEnv unsets every MEALDASH_* variable the loader reads so tests
// start from a clean environment.
func clearMealdashEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"MEALDASH_HOME", "MEALDASH_BIND", "MEALDASH_ALLOW_REMOTE",
		"MEALDASH_SECRET", "MEALDASH_ACCESS_TTL", "MEALDASH_REFRESH_TTL",
		"MEALDASH_DB", "MEALDASH_DEFAULT_LOCALE", "MEALDASH_OPEN_REGISTRATION",
		"MEALDASH_CONFIG",
	}
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		_ = os.Unsetenv(k)
		if had {
			t.Cleanup(func() { _ = os.Setenv(k, old) })
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	clearMealdashEnv(t)
	t.Setenv("MEALDASH_SECRET", "test-secret")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Bind != "127.0.0.1:8470" {
		t.Errorf("Bind = %q, want default", cfg.Bind)
	}
	if cfg.AccessTTL != 24*time.Hour {
		t.Errorf("AccessTTL = %v, want 24h", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 7*24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h", cfg.RefreshTTL)
	}
	if cfg.DefaultLocale != "zh" {
		t.Errorf("DefaultLocale = %q, want zh", cfg.DefaultLocale)
	}
	if !cfg.OpenRegistration {
		t.Errorf("OpenRegistration = false, want true by default")
	}
	if cfg.DatabasePath != filepath.Join(cfg.Home, "mealdash.db") {
		t.Errorf("DatabasePath = %q, want under home", cfg.DatabasePath)
	}
}

func TestConfigMissingSecret(t *testing.T) {
	clearMealdashEnv(t)

	_, err := ConfigFromEnv()
	if !errors.Is(err, ErrMissingSecret) {
		t.Errorf("err = %v, want ErrMissingSecret", err)
	}
}

func TestConfigRemoteWithoutSecret(t *testing.T) {
	clearMealdashEnv(t)
	t.Setenv("MEALDASH_ALLOW_REMOTE", "true")

	_, err := ConfigFromEnv()
	if !errors.Is(err, ErrRemoteWithoutSecret) {
		t.Errorf("err = %v, want ErrRemoteWithoutSecret", err)
	}
}

func TestConfigNonLoopbackBindRejected(t *testing.T) {
	clearMealdashEnv(t)
	t.Setenv("MEALDASH_SECRET", "test-secret")

	for _, bind := range []string{"0.0.0.0:8470", "192.168.1.5:8470", "example.com:8470"} {
		t.Setenv("MEALDASH_BIND", bind)
		_, err := ConfigFromEnv()
		if !errors.Is(err, ErrNonLoopbackBind) {
			t.Errorf("bind %q: err = %v, want ErrNonLoopbackBind", bind, err)
		}
	}
}

func TestConfigLoopbackBindsAccepted(t *testing.T) {
	clearMealdashEnv(t)
	t.Setenv("MEALDASH_SECRET", "test-secret")

	for _, bind := range []string{"127.0.0.1:9000", "localhost:9000", "[::1]:9000"} {
		t.Setenv("MEALDASH_BIND", bind)
		if _, err := ConfigFromEnv(); err != nil {
			t.Errorf("bind %q: unexpected error %v", bind, err)
		}
	}
}

func TestConfigRemoteBindWithOptIn(t *testing.T) {
	clearMealdashEnv(t)
	t.Setenv("MEALDASH_SECRET", "test-secret")
	t.Setenv("MEALDASH_BIND", "0.0.0.0:8470")
	t.Setenv("MEALDASH_ALLOW_REMOTE", "true")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if !cfg.AllowRemote {
		t.Errorf("AllowRemote = false, want true")
	}
}

func TestConfigYAMLOverlayAndEnvWins(t *testing.T) {
	clearMealdashEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "secret: from-yaml\nbind: 127.0.0.1:9999\ndefault_locale: en\naccess_ttl: 1h\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MEALDASH_CONFIG", path)
	t.Setenv("MEALDASH_BIND", "127.0.0.1:7777") // env overrides yaml

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Secret != "from-yaml" {
		t.Errorf("Secret = %q, want from-yaml", cfg.Secret)
	}
	if cfg.Bind != "127.0.0.1:7777" {
		t.Errorf("Bind = %q, want env value to win", cfg.Bind)
	}
	if cfg.DefaultLocale != "en" {
		t.Errorf("DefaultLocale = %q, want en from yaml", cfg.DefaultLocale)
	}
	if cfg.AccessTTL != time.Hour {
		t.Errorf("AccessTTL = %v, want 1h from yaml", cfg.AccessTTL)
	}
}

func TestConfigMissingYAMLFileErrors(t *testing.T) {
	clearMealdashEnv(t)
	t.Setenv("MEALDASH_SECRET", "test-secret")
	t.Setenv("MEALDASH_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := ConfigFromEnv(); err == nil {
		t.Errorf("expected error for missing config file")
	}
}

func TestConfigTTLParseErrors(t *testing.T) {
	clearMealdashEnv(t)
	t.Setenv("MEALDASH_SECRET", "test-secret")
	t.Setenv("MEALDASH_ACCESS_TTL", "not-a-duration")

	if _, err := ConfigFromEnv(); err == nil {
		t.Errorf("expected error for bad MEALDASH_ACCESS_TTL")
	}
}
