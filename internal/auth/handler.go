package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wardgate/wardgate/internal/platform/httpx"
	"github.com/wardgate/wardgate/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	validator  *validator.Validate
	cookieName string
	secure     bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, cookieName string, secure bool) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		validator:  validator.New(),
		cookieName: cookieName,
		secure:     secure,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Login verifies submitted credentials and issues the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, loginResponse{
			Errors: map[string]string{"general": "malformed request body"},
		})
		return
	}

	// Shape validation happens before any lookup.
	if err := h.validator.Struct(req); err != nil {
		fieldErrors := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Email":
					fieldErrors["email"] = "a valid email address is required"
				case "Password":
					fieldErrors["password"] = "password must be between 8 and 128 characters"
				}
			}
		}
		httpx.JSON(w, http.StatusBadRequest, loginResponse{Errors: fieldErrors})
		return
	}

	identity, token, err := h.service.Login(r.Context(), req.Email, req.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.JSON(w, http.StatusUnauthorized, loginResponse{
				Errors: map[string]string{"general": "invalid email or password"},
			})
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(h.service.codec.TTL()),
	})

	h.logger.Info("login", slog.Int64("user_id", identity.ID))
	httpx.JSON(w, http.StatusOK, loginResponse{Success: true, Message: "logged in"})
}

// Logout clears the session cookie and drops the audit row.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	httpx.JSON(w, http.StatusOK, loginResponse{Success: true, Message: "logged out"})
}
