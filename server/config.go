// ABOUTME: Server configuration loaded from MEALDASH_* environment variables with
// ABOUTME: an optional YAML overlay; enforces that remote binds carry a secret.
package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingSecret = errors.New(
		"MEALDASH_SECRET is not set; tokens cannot be signed without a secret",
	)
	ErrRemoteWithoutSecret = errors.New(
		"MEALDASH_ALLOW_REMOTE is true but MEALDASH_SECRET is not set; refusing to start without authentication",
	)
	ErrNonLoopbackBind = errors.New(
		"MEALDASH_BIND is a non-loopback address but MEALDASH_ALLOW_REMOTE is not true; set MEALDASH_ALLOW_REMOTE=true to allow remote access",
	)
)

// Config holds server configuration. Values resolve in order: built-in
// defaults, then the YAML overlay file, then environment variables.
type Config struct {
	Home             string        // Data directory (MEALDASH_HOME, default: ~/.mealdash)
	Bind             string        // Socket address (MEALDASH_BIND, default: 127.0.0.1:8470)
	AllowRemote      bool          // Allow non-loopback connections (MEALDASH_ALLOW_REMOTE)
	Secret           string        // HMAC secret for token signing (MEALDASH_SECRET, required)
	AccessTTL        time.Duration // Access token lifetime (MEALDASH_ACCESS_TTL, default: 24h)
	RefreshTTL       time.Duration // Refresh token lifetime (MEALDASH_REFRESH_TTL, default: 168h)
	DatabasePath     string        // SQLite file (MEALDASH_DB, default: <home>/mealdash.db)
	DefaultLocale    string        // Fallback locale (MEALDASH_DEFAULT_LOCALE, default: zh)
	OpenRegistration bool          // Allow self-service signup (MEALDASH_OPEN_REGISTRATION, default: true)
}

// fileConfig is the YAML overlay's shape. Durations are strings so the file
// can say "24h"; pointer booleans distinguish "unset" from "false".
type fileConfig struct {
	Home             string `yaml:"home"`
	Bind             string `yaml:"bind"`
	AllowRemote      *bool  `yaml:"allow_remote"`
	Secret           string `yaml:"secret"`
	AccessTTL        string `yaml:"access_ttl"`
	RefreshTTL       string `yaml:"refresh_ttl"`
	DatabasePath     string `yaml:"database_path"`
	DefaultLocale    string `yaml:"default_locale"`
	OpenRegistration *bool  `yaml:"open_registration"`
}

// ConfigFromEnv loads configuration from MEALDASH_* environment variables,
// applying the YAML overlay named by MEALDASH_CONFIG (if any) underneath the
// environment.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		Bind:             "127.0.0.1:8470",
		AccessTTL:        24 * time.Hour,
		RefreshTTL:       7 * 24 * time.Hour,
		DefaultLocale:    "zh",
		OpenRegistration: true,
	}

	if path := os.Getenv("MEALDASH_CONFIG"); path != "" {
		if err := applyYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("MEALDASH_HOME"); v != "" {
		cfg.Home = v
	}
	if cfg.Home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "/tmp"
		}
		cfg.Home = filepath.Join(homeDir, ".mealdash")
	}

	if v := os.Getenv("MEALDASH_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := os.Getenv("MEALDASH_ALLOW_REMOTE"); v == "true" || v == "1" || v == "yes" {
		cfg.AllowRemote = true
	}
	if v := os.Getenv("MEALDASH_SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv("MEALDASH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse MEALDASH_ACCESS_TTL: %w", err)
		}
		cfg.AccessTTL = d
	}
	if v := os.Getenv("MEALDASH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse MEALDASH_REFRESH_TTL: %w", err)
		}
		cfg.RefreshTTL = d
	}
	if v := os.Getenv("MEALDASH_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.Home, "mealdash.db")
	}
	if v := os.Getenv("MEALDASH_DEFAULT_LOCALE"); v != "" {
		cfg.DefaultLocale = v
	}
	if v := os.Getenv("MEALDASH_OPEN_REGISTRATION"); v != "" {
		cfg.OpenRegistration = v == "true" || v == "1" || v == "yes"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyYAML overlays values from a YAML config file onto cfg. A missing file
// is an error: a configured-but-absent path is a misconfiguration, not a
// default worth silently ignoring.
func applyYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Home != "" {
		cfg.Home = fc.Home
	}
	if fc.Bind != "" {
		cfg.Bind = fc.Bind
	}
	if fc.AllowRemote != nil {
		cfg.AllowRemote = *fc.AllowRemote
	}
	if fc.Secret != "" {
		cfg.Secret = fc.Secret
	}
	if fc.AccessTTL != "" {
		d, err := time.ParseDuration(fc.AccessTTL)
		if err != nil {
			return fmt.Errorf("parse access_ttl in %s: %w", path, err)
		}
		cfg.AccessTTL = d
	}
	if fc.RefreshTTL != "" {
		d, err := time.ParseDuration(fc.RefreshTTL)
		if err != nil {
			return fmt.Errorf("parse refresh_ttl in %s: %w", path, err)
		}
		cfg.RefreshTTL = d
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.DefaultLocale != "" {
		cfg.DefaultLocale = fc.DefaultLocale
	}
	if fc.OpenRegistration != nil {
		cfg.OpenRegistration = *fc.OpenRegistration
	}
	return nil
}

// Validate enforces the security constraints: a secret must exist, and
// non-loopback binds require an explicit remote opt-in.
func (cfg *Config) Validate() error {
	if cfg.Secret == "" {
		if cfg.AllowRemote {
			return ErrRemoteWithoutSecret
		}
		return ErrMissingSecret
	}

	// Only 127.0.0.0/8, ::1, and "localhost" count as loopback; anything else
	// needs the explicit opt-in.
	if !cfg.AllowRemote {
		if host, _, err := net.SplitHostPort(cfg.Bind); err == nil && host != "" {
			ip := net.ParseIP(host)
			switch {
			case ip != nil && ip.IsLoopback():
			case host == "localhost":
			default:
				return fmt.Errorf("%w: MEALDASH_BIND=%s", ErrNonLoopbackBind, cfg.Bind)
			}
		}
	}
	return nil
}
