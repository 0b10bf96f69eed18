// Package user holds the identity record and its data-access layer over
// the users table.
package user

import "time"

// User is the identity record persisted in the credential store. Username
// and email are stored lowercase and are globally unique. PasswordHash
// never leaves this layer in any serialized form.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name,omitempty"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Patch carries the fields an update may change. Nil fields are left
// untouched.
type Patch struct {
	Email        *string
	FullName     *string
	PasswordHash *string
	IsActive     *bool
	IsAdmin      *bool
}
