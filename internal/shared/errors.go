package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure. It deliberately covers
	// unknown email, missing password hash, inactive account, and password
	// mismatch so callers cannot tell which half failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers missing, malformed, tampered, and expired
	// session tokens. All of them mean "not authenticated".
	ErrInvalidToken = errors.New("invalid session token")
)
