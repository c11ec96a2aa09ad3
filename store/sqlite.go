// ABOUTME: SQLite-backed persistence for users, addresses, and preferences,
// ABOUTME: mapping constraint violations onto the core error taxonomy.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/mealdash/mealdash/core"
)

// Store wraps the SQLite database holding all persisted records. Every row is
// keyed by a 26-symbol ULID minted at creation time.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and ensures the
// schema is up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE,
			email TEXT NOT NULL UNIQUE,
			phone TEXT UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			user_type TEXT NOT NULL DEFAULT 'customer',
			is_active INTEGER NOT NULL DEFAULT 1,
			is_verified INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS user_addresses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			recipient TEXT NOT NULL,
			phone TEXT NOT NULL,
			province TEXT NOT NULL,
			city TEXT NOT NULL,
			district TEXT NOT NULL,
			detail TEXT NOT NULL,
			is_default INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS user_preferences (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			language TEXT NOT NULL DEFAULT 'zh',
			theme TEXT NOT NULL DEFAULT 'light',
			push_enabled INTEGER NOT NULL DEFAULT 1,
			email_enabled INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// uniqueMessageKeys maps a violated unique column to the localized message the
// API should answer with.
var uniqueMessageKeys = map[string]string{
	"users.username":           "user.errors.USERNAME_EXISTS",
	"users.email":              "user.errors.EMAIL_EXISTS",
	"users.phone":              "user.errors.PHONE_EXISTS",
	"user_preferences.user_id": "user.errors.PREFERENCE_EXISTS",
}

// mapSQLiteError converts a driver error into the core taxonomy: unique and
// foreign-key violations become client-facing conflicts with localized
// messages, anything else a generic database error.
func mapSQLiteError(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return core.Database(err)
	}

	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		// Message shape: "UNIQUE constraint failed: users.email"
		msg := se.Error()
		if idx := strings.Index(msg, "failed: "); idx >= 0 {
			column := strings.TrimSpace(msg[idx+len("failed: "):])
			if key, ok := uniqueMessageKeys[column]; ok {
				return core.UniqueViolation(key)
			}
		}
		return core.UniqueViolation("")
	case sqlite3.ErrConstraintForeignKey:
		// SQLite does not name the violated constraint; the only FK in the
		// schema points at users.
		return core.ForeignKeyViolation("user.errors.USER_NOT_EXISTS")
	}
	return core.Database(err)
}

// nullString maps "" to NULL so optional unique columns (username, phone)
// don't collide on the empty string.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
