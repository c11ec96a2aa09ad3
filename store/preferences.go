// ABOUTME: Per-user preference persistence with one row per user, written via
// ABOUTME: upsert so first write and later edits share a path.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/ulid"
)

// UpsertPreference creates or replaces a user's preference row. The row keeps
// its original ULID across updates.
func (s *Store) UpsertPreference(p *core.Preference) error {
	if !ulid.IsValid(p.UserID) {
		return userNotFound(p.UserID)
	}
	if p.ID == "" {
		p.ID = ulid.Generate()
	}
	p.UpdatedAt = core.Now()

	_, err := s.db.Exec(
		`INSERT INTO user_preferences (id, user_id, language, theme, push_enabled,
			email_enabled, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			language = excluded.language,
			theme = excluded.theme,
			push_enabled = excluded.push_enabled,
			email_enabled = excluded.email_enabled,
			updated_at = excluded.updated_at`,
		p.ID, p.UserID, p.Language, p.Theme, p.PushEnabled, p.EmailEnabled,
		core.FormatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert preference: %w", mapSQLiteError(err))
	}

	// On the update path the stored row keeps its original ID; read it back
	// so callers see the persisted value.
	return s.db.QueryRow(
		`SELECT id FROM user_preferences WHERE user_id = ?`, p.UserID).Scan(&p.ID)
}

// GetPreference fetches a user's preferences. Users who never saved any get
// the platform defaults rather than a not-found error.
func (s *Store) GetPreference(userID string) (*core.Preference, error) {
	if !ulid.IsValid(userID) {
		return nil, userNotFound(userID)
	}

	var (
		p       core.Preference
		updated string
	)
	err := s.db.QueryRow(
		`SELECT id, user_id, language, theme, push_enabled, email_enabled, updated_at
		 FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&p.ID, &p.UserID, &p.Language, &p.Theme, &p.PushEnabled, &p.EmailEnabled, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultPreference(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preference: %w", core.Database(err))
	}
	if p.UpdatedAt, err = core.ParseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", core.Database(err))
	}
	return &p, nil
}

// defaultPreference is the unsaved-state view of a user's preferences. It has
// no ID because no row exists yet.
func defaultPreference(userID string) *core.Preference {
	return &core.Preference{
		UserID:       userID,
		Language:     "zh",
		Theme:        "light",
		PushEnabled:  true,
		EmailEnabled: true,
	}
}
