// internal/domain/user.go
package domain

import "time"

// User represents an account allowed to obtain write tokens.
type User struct {
	ID           int64     `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	Username     string    `db:"username" json:"username"`     // Unique username
	PasswordHash string    `db:"password" json:"-"`            // bcrypt hash, never serialized
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // Timestamp of creation
}

// NewUser creates a new User instance from an already hashed password.
func NewUser(username, passwordHash string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}
