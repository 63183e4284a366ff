package auth

import "time"

// Account represents an authenticatable user account.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
