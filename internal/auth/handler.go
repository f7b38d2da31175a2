// Package auth exposes the HTTP sign-in surface: credential validation
// against the identity provider, principal bootstrap, and session
// lifecycle. Authentication failures surface specific reasons; everything
// that happens after a successful sign-in is the bootstrapper's promise
// and never blocks the user.
package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/identity"
	"github.com/vb-entreprise/rrsa-server/internal/platform/httpx"
	"github.com/vb-entreprise/rrsa-server/internal/session"
	"github.com/vb-entreprise/rrsa-server/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	provider       identity.Provider
	bootstrapper   *session.Bootstrapper
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, provider identity.Provider, bootstrapper *session.Bootstrapper, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		provider:       provider,
		bootstrapper:   bootstrapper,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/csrf", h.handleCSRF)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type principalView struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	subject, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.Problem(w, http.StatusUnauthorized, "Sign In Failed", shared.ErrInvalidCredentials.Error())
		case errors.Is(err, shared.ErrAccountDisabled):
			httpx.Problem(w, http.StatusForbidden, "Sign In Failed", shared.ErrAccountDisabled.Error())
		default:
			h.logger.Error("identity provider sign in", slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, "Sign In Failed", "identity provider unavailable")
		}
		return
	}

	// The subject authenticated; from here on a principal is guaranteed.
	principal := h.bootstrapper.Bootstrap(r.Context(), subject)

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login", slog.String("subject", subject.ID))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if err := sess.SetPrincipal(principal); err != nil {
		h.logger.Error("attach principal to session", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusOK, principalView{
		DisplayName: principal.DisplayName,
		Email:       principal.Email,
		Role:        string(principal.Role),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

// Me reports the read-only identity fields and per-module access of the
// current principal. Raw permission internals stay private to the core.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p := authz.CurrentPrincipal(r)
	if p == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no active session")
		return
	}
	access := make(map[string]bool, len(authz.Modules))
	for _, module := range authz.Modules {
		access[string(module)] = authz.CanAccessModule(p, module)
	}
	httpx.JSON(w, http.StatusOK, struct {
		principalView
		Modules map[string]bool `json:"modules"`
	}{
		principalView: principalView{
			DisplayName: p.DisplayName,
			Email:       p.Email,
			Role:        string(p.Role),
		},
		Modules: access,
	})
}
