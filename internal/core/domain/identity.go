package domain

import "time"

// User mirrors the persisted representation in the usuarios table.
type User struct {
	ID           string
	Email        string
	Phone        string
	PasswordHash string
	IsActive     bool
	RegisteredAt time.Time
	LastAccess   *time.Time
}

// Sanitized returns a copy of the user without the password hash.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
