// ABOUTME: User persistence: create with a freshly minted ULID, lookups by ID
// ABOUTME: and email, profile updates, and soft deactivation.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/ulid"
)

// userColumns is the SELECT list every user scan uses.
const userColumns = `id, username, email, phone, password_hash, full_name,
	user_type, is_active, is_verified, created_at, updated_at`

// CreateUser inserts a new user, minting its identifier and stamping both
// timestamps. The minted ID is written back into u.
func (s *Store) CreateUser(u *core.User) error {
	u.ID = ulid.Generate()
	u.CreatedAt = core.Now()
	u.UpdatedAt = u.CreatedAt
	if u.UserType == "" {
		u.UserType = core.UserTypeCustomer
	}
	u.IsActive = true

	_, err := s.db.Exec(
		`INSERT INTO users (id, username, email, phone, password_hash, full_name,
			user_type, is_active, is_verified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		nullString(u.Username),
		u.Email,
		nullString(u.Phone),
		u.PasswordHash,
		u.FullName,
		string(u.UserType),
		u.IsActive,
		u.IsVerified,
		core.FormatTime(u.CreatedAt),
		core.FormatTime(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapSQLiteError(err))
	}
	return nil
}

// GetUser fetches an active user by ID. A malformed identifier is treated the
// same as an absent record: external callers must not learn which it was.
func (s *Store) GetUser(id string) (*core.User, error) {
	if !ulid.IsValid(id) {
		return nil, userNotFound(id)
	}
	row := s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ? AND is_active = 1`, id)
	return scanUser(row, id)
}

// GetUserByEmail fetches an active user by email for login.
func (s *Store) GetUserByEmail(email string) (*core.User, error) {
	row := s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email = ? AND is_active = 1`, email)
	return scanUser(row, email)
}

// ListUsers returns all active users ordered by ID, which by construction is
// creation order at millisecond granularity.
func (s *Store) ListUsers() ([]core.User, error) {
	rows, err := s.db.Query(
		`SELECT ` + userColumns + ` FROM users WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", mapSQLiteError(err))
	}
	defer func() { _ = rows.Close() }()

	var users []core.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", mapSQLiteError(err))
	}
	return users, nil
}

// UpdateUser writes the mutable profile fields and bumps updated_at. The ID,
// password hash, and created_at never change here.
func (s *Store) UpdateUser(u *core.User) error {
	if !ulid.IsValid(u.ID) {
		return userNotFound(u.ID)
	}
	u.UpdatedAt = core.Now()

	res, err := s.db.Exec(
		`UPDATE users SET username = ?, email = ?, phone = ?, full_name = ?,
			is_verified = ?, updated_at = ?
		 WHERE id = ? AND is_active = 1`,
		nullString(u.Username),
		u.Email,
		nullString(u.Phone),
		u.FullName,
		u.IsVerified,
		core.FormatTime(u.UpdatedAt),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", mapSQLiteError(err))
	}
	return requireRow(res, userNotFound(u.ID))
}

// UpdatePasswordHash replaces a user's stored hash.
func (s *Store) UpdatePasswordHash(id, hash string) error {
	if !ulid.IsValid(id) {
		return userNotFound(id)
	}
	res, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ? AND is_active = 1`,
		hash, core.FormatTime(core.Now()), id)
	if err != nil {
		return fmt.Errorf("update password: %w", mapSQLiteError(err))
	}
	return requireRow(res, userNotFound(id))
}

// DeactivateUser soft-deletes a user. The row and its ULID remain; the
// identifier is never reused.
func (s *Store) DeactivateUser(id string) error {
	if !ulid.IsValid(id) {
		return userNotFound(id)
	}
	res, err := s.db.Exec(
		`UPDATE users SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1`,
		core.FormatTime(core.Now()), id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", mapSQLiteError(err))
	}
	return requireRow(res, userNotFound(id))
}

func userNotFound(ref string) *core.APIError {
	e := core.NotFound("user.errors.NOT_FOUND")
	e.Params = map[string]any{"user_id": ref}
	return e
}

// requireRow converts a zero-row update into the given not-found error.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.Database(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row, ref string) (*core.User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, userNotFound(ref)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanUserRow(row rowScanner) (*core.User, error) {
	var (
		u                core.User
		username, phone  sql.NullString
		userType         string
		created, updated string
	)
	err := row.Scan(&u.ID, &username, &u.Email, &phone, &u.PasswordHash, &u.FullName,
		&userType, &u.IsActive, &u.IsVerified, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", core.Database(err))
	}
	u.Username = username.String
	u.Phone = phone.String
	u.UserType = core.UserType(userType)
	if u.CreatedAt, err = core.ParseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", core.Database(err))
	}
	if u.UpdatedAt, err = core.ParseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", core.Database(err))
	}
	return &u, nil
}
