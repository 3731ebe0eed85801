package domain

import "time"

// User represents a registered account. PasswordHash holds a bcrypt hash;
// the plaintext password is never persisted.
type User struct {
	ID           int64
	Name         string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
