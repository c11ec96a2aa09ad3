// ABOUTME: Domain model for the mealdash backend: users, delivery addresses, and
// ABOUTME: per-user preferences, all keyed by 26-symbol ULID strings.
package core

import "time"

// UserType classifies an account's role on the platform.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeMerchant UserType = "merchant"
	UserTypeRider    UserType = "rider"
	UserTypeAdmin    UserType = "admin"
)

// User is an account record. The ID is minted once at creation and never
// changes; PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	UserType     UserType  `json:"user_type"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Address is a delivery address belonging to a user. At most one address per
// user carries IsDefault.
type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Recipient string    `json:"recipient"`
	Phone     string    `json:"phone"`
	Province  string    `json:"province"`
	City      string    `json:"city"`
	District  string    `json:"district"`
	Detail    string    `json:"detail"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preference holds a user's settings. One row per user.
type Preference struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Language     string    `json:"language"`
	Theme        string    `json:"theme"`
	PushEnabled  bool      `json:"push_enabled"`
	EmailEnabled bool      `json:"email_enabled"`
	UpdatedAt    time.Time `json:"updated_at"`
}
