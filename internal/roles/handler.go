package roles

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/platform/httpx"
)

// Handler wires HTTP endpoints for role administration.
type Handler struct {
	logger    *slog.Logger
	catalog   *Catalog
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, catalog *Catalog, gate authz.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, catalog: catalog, gate: gate, validator: validator.New()}
}

// MountRoutes registers role administration routes with their
// permission gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.RequirePermission(authz.ModuleRoles, authz.ActionViewRoles)).Get("/", h.list)
	r.With(h.gate.RequirePermission(authz.ModuleRoles, authz.ActionCreateRoles)).Post("/", h.create)
	r.With(h.gate.RequirePermission(authz.ModuleRoles, authz.ActionViewRoles)).Get("/{roleID}", h.get)
	r.With(h.gate.RequirePermission(authz.ModuleRoles, authz.ActionEditRoles)).Put("/{roleID}/permissions", h.updatePermissions)
}

type roleView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Permissions authz.PermissionSet `json:"permissions"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records := h.catalog.List(r.Context())
	views := make([]roleView, 0, len(records))
	for _, rec := range records {
		views = append(views, roleView{ID: rec.ID, Name: rec.Data.Name, Permissions: rec.Data.Permissions})
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	rec, err := h.catalog.Get(r.Context(), roleID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "role not found")
			return
		}
		h.logger.Error("get role", slog.String("role", roleID), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Unavailable", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, roleView{ID: rec.ID, Name: rec.Data.Name, Permissions: rec.Data.Permissions})
}

type createRoleRequest struct {
	Name        string              `json:"name" validate:"required"`
	Permissions authz.PermissionSet `json:"permissions" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if _, exists := h.catalog.FindByName(r.Context(), req.Name); exists {
		httpx.Problem(w, http.StatusConflict, "Duplicate", "role "+req.Name+" already exists")
		return
	}
	id, err := h.catalog.Create(r.Context(), RoleDefinition{Name: req.Name, Permissions: req.Permissions})
	if err != nil {
		h.logger.Error("create role", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, roleView{ID: id, Name: req.Name, Permissions: req.Permissions})
}

type updatePermissionsRequest struct {
	Permissions authz.PermissionSet `json:"permissions" validate:"required"`
}

func (h *Handler) updatePermissions(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	var req updatePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.catalog.UpdatePermissions(r.Context(), roleID, req.Permissions); err != nil {
		h.logger.Error("update role permissions", slog.String("role", roleID), slog.Any("error", err))
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"id": roleID})
}
