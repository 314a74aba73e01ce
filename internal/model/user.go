package model

import "time"

// Roles a user can hold. Registration always yields RoleUser; admins are
// created by the seed command.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account as stored in the `users`
// collection (or table). Email is unique and kept normalized
// (trimmed, lower-cased).
//
// Fields:
//
//	ID           – storage-assigned identifier, serialized as a string.
//	Name         – display name given at registration.
//	Email        – unique login address.
//	PasswordHash – PBKDF2 modular-crypt hash; never serialized.
//	Role         – "user" or "admin".
//	CreatedAt    – registration time (UTC).
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
