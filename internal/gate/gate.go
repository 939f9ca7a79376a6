// Package gate implements the request-level authentication check. It runs
// before every handler, decodes the session cookie without touching the
// database, and separates anonymous from authenticated traffic. Fine-grained
// role/permission checks happen later, closer to the resource.
package gate

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/wardgate/wardgate/internal/shared"
)

// Default redirect targets.
const (
	LoginPath = "/auth/login"
	HomePath  = "/"
)

// TokenDecoder verifies and unpacks a session token.
type TokenDecoder interface {
	Decode(raw string) (*shared.Identity, error)
}

// Gate classifies each request by token validity and path visibility.
type Gate struct {
	codec      TokenDecoder
	cookieName string
	public     []string
	skip       []string
	logger     *slog.Logger
}

// New constructs a Gate. public lists path prefixes reachable without a
// token (login, register); skip lists infrastructure paths the gate ignores
// entirely (health checks, metrics).
func New(codec TokenDecoder, cookieName string, public, skip []string, logger *slog.Logger) *Gate {
	return &Gate{
		codec:      codec,
		cookieName: cookieName,
		public:     public,
		skip:       skip,
		logger:     logger,
	}
}

// Middleware applies the gate's state machine:
//
//	no token, protected path  -> redirect to login
//	valid token, public path  -> redirect to home
//	otherwise                 -> pass through
//
// On pass-through with a valid token the identity is stored in the request
// context for the policy middleware and handlers.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if g.skipped(path) {
			next.ServeHTTP(w, r)
			return
		}

		identity := g.decode(r)
		isPublic := g.isPublic(path)

		switch {
		case identity == nil && !isPublic:
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		case identity != nil && isPublic:
			http.Redirect(w, r, HomePath, http.StatusSeeOther)
		case identity != nil:
			ctx := shared.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// decode returns nil for a missing, malformed, tampered, or expired token.
// All of those mean "anonymous"; the gate never exposes why.
func (g *Gate) decode(r *http.Request) *shared.Identity {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	identity, err := g.codec.Decode(cookie.Value)
	if err != nil {
		if g.logger != nil {
			g.logger.Debug("rejected session token", slog.String("path", r.URL.Path))
		}
		return nil
	}
	return identity
}

func (g *Gate) isPublic(path string) bool {
	return hasAnyPrefix(path, g.public)
}

func (g *Gate) skipped(path string) bool {
	return hasAnyPrefix(path, g.skip)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
