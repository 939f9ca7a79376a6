package users

import "time"

// User is the administrative view of an account. Password hashes never leave
// the repository layer in this package.
type User struct {
	ID        int64
	Email     string
	Name      string
	Image     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
