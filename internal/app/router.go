package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wardgate/wardgate/internal/auth"
	"github.com/wardgate/wardgate/internal/gate"
	"github.com/wardgate/wardgate/internal/platform/httpx"
	"github.com/wardgate/wardgate/internal/rbac"
	"github.com/wardgate/wardgate/internal/shared"
	"github.com/wardgate/wardgate/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	Gate         *gate.Gate
	AuthHandler  *auth.Handler
	UsersHandler *users.Handler
	RBACHandler  *rbac.Handler
}

// NewRouter constructs the chi.Router with Wardgate defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
		Gate:   params.Gate,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		id := shared.IdentityFromContext(r.Context())
		if id == nil {
			// The gate already redirects anonymous traffic; this is a
			// fallback for misconfigured public prefixes.
			http.Redirect(w, r, gate.LoginPath, http.StatusSeeOther)
			return
		}
		httpx.JSON(w, http.StatusOK, id)
	})

	r.Get("/unauthorized", func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "you do not have access to that resource")
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(LoginRateLimiter(params.Config)).Post("/login", params.AuthHandler.Login)
		r.Post("/logout", params.AuthHandler.Logout)
	})

	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.RBACHandler != nil {
		params.RBACHandler.MountRoutes(r)
	}

	return r
}
