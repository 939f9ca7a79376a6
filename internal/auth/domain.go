package auth

import "time"

// User represents a user account. PasswordHash is nil for accounts that
// authenticate externally and therefore can never pass local verification.
type User struct {
	ID           int64
	Email        string
	Name         string
	Image        string
	PasswordHash *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
