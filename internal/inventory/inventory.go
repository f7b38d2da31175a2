// Package inventory keeps the shelter's supply records.
package inventory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/platform/httpx"
	"github.com/vb-entreprise/rrsa-server/internal/repository"
)

// Collection holds inventory item documents.
const Collection = "inventoryItems"

// Item is a stocked supply: food, medicine, bedding, and so on.
type Item struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Handler wires HTTP endpoints for inventory items.
type Handler struct {
	logger    *slog.Logger
	records   *repository.Repository[Item]
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler over the inventory collection.
func NewHandler(logger *slog.Logger, store docstore.Store, gate authz.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		records:   repository.New[Item](store, Collection, logger),
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers inventory routes with their permission gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.RequirePermission(authz.ModuleInventory, authz.ActionViewItems)).Get("/", h.list)
	r.With(h.gate.RequirePermission(authz.ModuleInventory, authz.ActionAddItems)).Post("/", h.create)
	r.With(h.gate.RequirePermission(authz.ModuleInventory, authz.ActionEditItems)).Patch("/{itemID}", h.update)
	r.With(h.gate.RequirePermission(authz.ModuleInventory, authz.ActionDeleteItems)).Delete("/{itemID}", h.remove)
}

type createItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Unit     string `json:"unit"`
	Notes    string `json:"notes"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.records.GetAll(r.Context()))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	id, err := h.records.Create(r.Context(), Item{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Notes:    req.Notes,
	})
	if err != nil {
		h.logger.Error("create item", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": id})
}

type updateItemRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Category *string `json:"category" validate:"omitempty,min=1"`
	Quantity *int    `json:"quantity" validate:"omitempty,gte=0"`
	Unit     *string `json:"unit"`
	Notes    *string `json:"notes"`
}

func (req updateItemRequest) fields() map[string]any {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Quantity != nil {
		fields["quantity"] = *req.Quantity
	}
	if req.Unit != nil {
		fields["unit"] = *req.Unit
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	return fields
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.records.Update(r.Context(), chi.URLParam(r, "itemID"), req.fields()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "item not found")
			return
		}
		h.logger.Error("update item", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "itemID")})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "item not found")
			return
		}
		h.logger.Error("delete item", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
