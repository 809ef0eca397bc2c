package domain

import "time"

// User represents an account that can sign in and author articles.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
