package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wardgate/wardgate/internal/rbac"
	"github.com/wardgate/wardgate/internal/shared"
)

// TokenCodec issues and inspects session tokens.
type TokenCodec interface {
	Encode(id shared.Identity) (string, error)
	TokenID(raw string) (string, error)
	TTL() time.Duration
}

// Resolver computes effective grants for a user at login time.
type Resolver interface {
	Resolve(ctx context.Context, userID int64) (rbac.Grants, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	resolver Resolver
	codec    TokenCodec
}

// NewService constructs a new Service.
func NewService(repo Repository, resolver Resolver, codec TokenCodec) *Service {
	return &Service{repo: repo, resolver: resolver, codec: codec}
}

// Verify checks email/password credentials against the stored hash. Unknown
// email, an account without a local credential, an inactive account, and a
// password mismatch are indistinguishable to the caller.
func (s *Service) Verify(ctx context.Context, email, password string) (*User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, shared.ErrInvalidCredentials
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || user.PasswordHash == nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies credentials, resolves the user's grants, and issues a
// signed session token carrying the identity snapshot. The token is the only
// artifact later requests need; the session row is audit bookkeeping.
func (s *Service) Login(ctx context.Context, email, password, ip, ua string) (*shared.Identity, string, error) {
	user, err := s.Verify(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	grants, err := s.resolver.Resolve(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	identity := shared.Identity{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Image:       user.Image,
		Roles:       grants.Roles,
		Permissions: grants.Permissions,
	}

	raw, err := s.codec.Encode(identity)
	if err != nil {
		return nil, "", err
	}

	if jti, err := s.codec.TokenID(raw); err == nil {
		// Audit failures must not block login.
		_ = s.repo.CreateSession(ctx, jti, user.ID, time.Now().Add(s.codec.TTL()), ip, ua)
	}

	return &identity, raw, nil
}

// Logout removes the session audit row for the given token. The token itself
// stays valid until expiry; clearing the cookie is the transport's job.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	jti, err := s.codec.TokenID(rawToken)
	if err != nil {
		return nil
	}
	return s.repo.DeleteSession(ctx, jti)
}
