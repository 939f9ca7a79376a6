package auth

import (
	"context"
	"time"
)

// Repository defines persistence operations for the auth module. Session
// rows are audit bookkeeping only; authorization never reads them.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}
