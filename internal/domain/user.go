package domain

import "time"

// User represents a registered account. PasswordHash holds the bcrypt hash;
// the plaintext password is never persisted.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
