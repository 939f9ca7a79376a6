package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/wardgate/wardgate/internal/platform/httpx"
	"github.com/wardgate/wardgate/internal/shared"
)

// Middleware adapts the policy evaluator to chi handlers. It reads the
// identity the route gate stored in context; fine-grained checks here never
// hit the database because the identity is a token snapshot.
type Middleware struct {
	Logger *slog.Logger
}

// Require enforces a full requirement on the wrapped handler.
func (m Middleware) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.IdentityFromContext(r.Context())
			if id == nil {
				// The gate admits anonymous traffic on public paths only;
				// reaching a guarded handler without identity is a denial.
				m.deny(w, r, Decision{RedirectTo: orDefault(req.RedirectTo)})
				return
			}
			decision := Authorize(*id, req)
			if !decision.Allowed {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.Int64("user_id", id.ID),
						slog.String("path", r.URL.Path))
				}
				m.deny(w, r, decision)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole allows the request when the identity holds at least one of
// the given roles.
func (m Middleware) RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	return m.Require(Requirement{Roles: roles})
}

// RequireAll allows the request only when every permission is held.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.Require(Requirement{Permissions: perms})
}

// deny answers API clients with problem+json and everyone else with the
// requirement's redirect target.
func (m Middleware) deny(w http.ResponseWriter, r *http.Request, d Decision) {
	if wantsJSON(r) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role or permissions")
		return
	}
	http.Redirect(w, r, d.RedirectTo, http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

func orDefault(target string) string {
	if target == "" {
		return DefaultDenyRedirect
	}
	return target
}
