// Package token encodes the resolved identity into a signed, self-contained
// session token. Decode never touches the database: everything the route
// gate and the policy evaluator need travels inside the token.
package token

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wardgate/wardgate/internal/shared"
)

// Claims is the versioned schema for identity data carried by a session
// token. All fields are declared up front; optional ones are tagged
// omitempty. Nothing downstream casts or augments this type.
type Claims struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Picture     string   `json:"picture,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a process-wide secret. The
// secret is read-only after startup; Codec is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock overrides the codec's time source.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec constructs a Codec. The secret must be non-empty; ttl bounds the
// lifetime of every issued token.
func NewCodec(secret string, ttl time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret required")
	}
	if ttl <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	c := &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode snapshots the identity into a signed token. Two encodings of the
// same identity differ (jti, timestamps) but decode to equal claims.
func (c *Codec) Encode(id shared.Identity) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		Name:        id.Name,
		Email:       id.Email,
		Picture:     id.Image,
		Roles:       id.Roles,
		Permissions: id.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   formatSubject(id.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Decode verifies signature and expiry, then reconstructs the identity. Any
// failure yields shared.ErrInvalidToken, never a partial identity.
func (c *Codec) Decode(raw string) (*shared.Identity, error) {
	claims, err := c.parse(raw)
	if err != nil {
		return nil, err
	}
	id, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	return &shared.Identity{
		ID:          id,
		Name:        claims.Name,
		Email:       claims.Email,
		Image:       claims.Picture,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}, nil
}

// TokenID returns the jti of a valid token, used to key session audit rows.
func (c *Codec) TokenID(raw string) (string, error) {
	claims, err := c.parse(raw)
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

// TTL exposes the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, shared.ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}
