package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/platform/httpx"
	"github.com/vb-entreprise/rrsa-server/internal/shared"
)

// Handler wires HTTP endpoints for user management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers user management routes with their permission
// gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.RequirePermission(authz.ModuleUsers, authz.ActionViewUsers)).Get("/", h.list)
	r.With(h.gate.RequirePermission(authz.ModuleUsers, authz.ActionCreateUsers)).Post("/", h.create)
	r.With(h.gate.RequirePermission(authz.ModuleUsers, authz.ActionEditUsers)).Put("/{subjectID}/role", h.changeRole)
}

type userView struct {
	SubjectID   string `json:"subjectId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records := h.service.List(r.Context())
	views := make([]userView, 0, len(records))
	for _, rec := range records {
		views = append(views, userView{
			SubjectID:   rec.Data.SubjectID,
			Email:       rec.Data.Email,
			DisplayName: rec.Data.DisplayName,
			Role:        rec.Data.Role,
		})
	}
	httpx.JSON(w, http.StatusOK, views)
}

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"required"`
	Role        string `json:"role" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, ok := authz.ParseRole(req.Role)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role "+req.Role)
		return
	}
	profile, err := h.service.Create(r.Context(), req.Email, req.Password, req.DisplayName, role)
	if err != nil {
		if errors.Is(err, shared.ErrEmailTaken) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
			return
		}
		h.logger.Error("create user", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, userView{
		SubjectID:   profile.SubjectID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Role:        profile.Role,
	})
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	var req changeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, ok := authz.ParseRole(req.Role)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role "+req.Role)
		return
	}
	if err := h.service.ChangeRole(r.Context(), subjectID, role); err != nil {
		h.logger.Error("change role", slog.String("subject", subjectID), slog.Any("error", err))
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"subjectId": subjectID, "role": string(role)})
}
