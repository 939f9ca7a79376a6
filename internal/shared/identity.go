package shared

import "context"

// Identity is the resolved snapshot of an authenticated principal. It is
// computed once at login, embedded in the session token, and carried through
// the request context. It is never read back from the database mid-session:
// grants revoked after issuance stay in force until the token expires.
type Identity struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Image       string   `json:"image,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasRole reports whether the identity carries the named role.
func (id Identity) HasRole(name string) bool {
	for _, r := range id.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// HasPermission reports whether the identity carries the named permission.
func (id Identity) HasPermission(name string) bool {
	for _, p := range id.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context. Nil means the
// request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
