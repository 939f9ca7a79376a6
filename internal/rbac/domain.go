package rbac

import "time"

// Role represents a named bundle of permissions assignable to users.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic named capability.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// Grants is the output of permission resolution: the user's role names and
// the union of permissions granted through those roles plus direct grants.
type Grants struct {
	Roles       []string
	Permissions []string
}
