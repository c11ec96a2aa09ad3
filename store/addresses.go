// ABOUTME: Delivery address persistence scoped to an owning user, including the
// ABOUTME: single-default invariant enforced transactionally.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/ulid"
)

const addressColumns = `id, user_id, recipient, phone, province, city, district,
	detail, is_default, created_at, updated_at`

// CreateAddress inserts a new address for a user. If the address is marked
// default, any previous default for that user is cleared in the same
// transaction.
func (s *Store) CreateAddress(a *core.Address) error {
	if !ulid.IsValid(a.UserID) {
		return userNotFound(a.UserID)
	}
	a.ID = ulid.Generate()
	a.CreatedAt = core.Now()
	a.UpdatedAt = a.CreatedAt

	tx, err := s.db.Begin()
	if err != nil {
		return core.Database(err)
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsDefault {
		if _, err := tx.Exec(
			`UPDATE user_addresses SET is_default = 0 WHERE user_id = ?`, a.UserID); err != nil {
			return fmt.Errorf("clear default address: %w", mapSQLiteError(err))
		}
	}

	_, err = tx.Exec(
		`INSERT INTO user_addresses (id, user_id, recipient, phone, province, city,
			district, detail, is_default, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Recipient, a.Phone, a.Province, a.City,
		a.District, a.Detail, a.IsDefault,
		core.FormatTime(a.CreatedAt), core.FormatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert address: %w", mapSQLiteError(err))
	}
	return tx.Commit()
}

// ListAddresses returns a user's addresses, default first, then newest first.
func (s *Store) ListAddresses(userID string) ([]core.Address, error) {
	if !ulid.IsValid(userID) {
		return nil, userNotFound(userID)
	}
	rows, err := s.db.Query(
		`SELECT `+addressColumns+` FROM user_addresses
		 WHERE user_id = ? ORDER BY is_default DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", mapSQLiteError(err))
	}
	defer func() { _ = rows.Close() }()

	var addrs []core.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list addresses: %w", mapSQLiteError(err))
	}
	return addrs, nil
}

// GetAddress fetches one address, scoped to its owner so users cannot read
// each other's addresses by guessing identifiers.
func (s *Store) GetAddress(userID, id string) (*core.Address, error) {
	if !ulid.IsValid(userID) || !ulid.IsValid(id) {
		return nil, addressNotFound()
	}
	row := s.db.QueryRow(
		`SELECT `+addressColumns+` FROM user_addresses WHERE id = ? AND user_id = ?`,
		id, userID)
	a, err := scanAddress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, addressNotFound()
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAddress writes the mutable fields of an owned address.
func (s *Store) UpdateAddress(a *core.Address) error {
	if !ulid.IsValid(a.UserID) || !ulid.IsValid(a.ID) {
		return addressNotFound()
	}
	a.UpdatedAt = core.Now()

	res, err := s.db.Exec(
		`UPDATE user_addresses SET recipient = ?, phone = ?, province = ?, city = ?,
			district = ?, detail = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		a.Recipient, a.Phone, a.Province, a.City, a.District, a.Detail,
		core.FormatTime(a.UpdatedAt), a.ID, a.UserID,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", mapSQLiteError(err))
	}
	return requireRow(res, addressNotFound())
}

// DeleteAddress removes an owned address. Addresses delete hard: they carry
// no history other records depend on.
func (s *Store) DeleteAddress(userID, id string) error {
	if !ulid.IsValid(userID) || !ulid.IsValid(id) {
		return addressNotFound()
	}
	res, err := s.db.Exec(
		`DELETE FROM user_addresses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete address: %w", mapSQLiteError(err))
	}
	return requireRow(res, addressNotFound())
}

// SetDefaultAddress marks one owned address as the default, clearing any
// previous default in the same transaction.
func (s *Store) SetDefaultAddress(userID, id string) error {
	if !ulid.IsValid(userID) || !ulid.IsValid(id) {
		return addressNotFound()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return core.Database(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`UPDATE user_addresses SET is_default = 0 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear default address: %w", mapSQLiteError(err))
	}

	res, err := tx.Exec(
		`UPDATE user_addresses SET is_default = 1, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		core.FormatTime(core.Now()), id, userID)
	if err != nil {
		return fmt.Errorf("set default address: %w", mapSQLiteError(err))
	}
	if err := requireRow(res, addressNotFound()); err != nil {
		return err
	}
	return tx.Commit()
}

func addressNotFound() *core.APIError {
	return core.NotFound("user.errors.ADDRESS_NOT_FOUND")
}

func scanAddress(row rowScanner) (*core.Address, error) {
	var (
		a                core.Address
		created, updated string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Recipient, &a.Phone, &a.Province, &a.City,
		&a.District, &a.Detail, &a.IsDefault, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan address: %w", core.Database(err))
	}
	if a.CreatedAt, err = core.ParseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", core.Database(err))
	}
	if a.UpdatedAt, err = core.ParseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", core.Database(err))
	}
	return &a, nil
}
