// Package animalcare keeps feeding and cleaning log entries.
package animalcare

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

// Collection holds care log documents.
const Collection = "careLogs"

// CareLog records one feeding or cleaning round for a case.
type CareLog struct {
	CaseNumber  string `json:"caseNumber"`
	Kind        string `json:"kind"`
	Notes       string `json:"notes,omitempty"`
	PerformedBy string `json:"performedBy"`
}

// Handler wires HTTP endpoints for care logs.
type Handler struct {
	logger    *slog.Logger
	records   *repository.Repository[CareLog]
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler over the care log collection.
func NewHandler(logger *slog.Logger, store docstore.Store, gate authz.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		records:   repository.New[CareLog](store, Collection, logger),
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers care log routes with their permission gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.RequirePermission(authz.ModuleAnimalCare, authz.ActionViewCareRecords)).Get("/", h.list)
	r.With(h.gate.RequirePermission(authz.ModuleAnimalCare, authz.ActionAddCareRecords)).Post("/", h.create)
	r.With(h.gate.RequirePermission(authz.ModuleAnimalCare, authz.ActionDeleteCareRecords)).Delete("/{logID}", h.remove)
}

type createLogRequest struct {
	CaseNumber string `json:"caseNumber" validate:"required"`
	Kind       string `json:"kind" validate:"required,oneof=feeding cleaning"`
	Notes      string `json:"notes"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if caseNumber := r.URL.Query().Get("caseNumber"); caseNumber != "" {
		httpx.JSON(w, http.StatusOK, h.records.GetByField(r.Context(), "caseNumber", caseNumber))
		return
	}
	httpx.JSON(w, http.StatusOK, h.records.GetAll(r.Context()))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createLogRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	performedBy := ""
	if p := authz.CurrentPrincipal(r); p != nil {
		performedBy = p.DisplayName
	}
	id, err := h.records.Create(r.Context(), CareLog{
		CaseNumber:  req.CaseNumber,
		Kind:        req.Kind,
		Notes:       req.Notes,
		PerformedBy: performedBy,
	})
	if err != nil {
		h.logger.Error("create care log", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), chi.URLParam(r, "logID")); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "log not found")
			return
		}
		h.logger.Error("delete care log", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
