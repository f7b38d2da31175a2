package casefiles

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

// Handler wires HTTP endpoints for case papers.
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

// MountRoutes registers case paper routes with their permission gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.RequirePermission(authz.ModuleCases, authz.ActionViewCases)).Get("/", h.list)
	r.With(h.gate.RequirePermission(authz.ModuleCases, authz.ActionCreateCases)).Post("/", h.create)
	r.With(h.gate.RequirePermission(authz.ModuleCases, authz.ActionViewCases)).Get("/{caseID}", h.get)
	r.With(h.gate.RequirePermission(authz.ModuleCases, authz.ActionEditCases)).Patch("/{caseID}", h.update)
	r.With(h.gate.RequirePermission(authz.ModuleCases, authz.ActionDeleteCases)).Delete("/{caseID}", h.remove)
}

type createCaseRequest struct {
	AnimalName   string `json:"animalName" validate:"required"`
	Species      string `json:"species" validate:"required"`
	Condition    string `json:"condition"`
	Notes        string `json:"notes"`
	AdmittedDate string `json:"admittedDate" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.List(r.Context()))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	id, caseNumber, err := h.service.Create(r.Context(), CasePaper{
		AnimalName:   req.AnimalName,
		Species:      req.Species,
		Condition:    req.Condition,
		Notes:        req.Notes,
		AdmittedDate: req.AdmittedDate,
	})
	if err != nil {
		h.logger.Error("create case", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": id, "caseNumber": caseNumber})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "case not found")
			return
		}
		h.logger.Error("get case", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Unavailable", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

type updateCaseRequest struct {
	AnimalName   *string `json:"animalName" validate:"omitempty,min=1"`
	Species      *string `json:"species" validate:"omitempty,min=1"`
	Condition    *string `json:"condition"`
	Status       *string `json:"status" validate:"omitempty,min=1"`
	Notes        *string `json:"notes"`
	AdmittedDate *string `json:"admittedDate" validate:"omitempty,datetime=2006-01-02"`
}

func (req updateCaseRequest) fields() map[string]any {
	fields := map[string]any{}
	if req.AnimalName != nil {
		fields["animalName"] = *req.AnimalName
	}
	if req.Species != nil {
		fields["species"] = *req.Species
	}
	if req.Condition != nil {
		fields["condition"] = *req.Condition
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.AdmittedDate != nil {
		fields["admittedDate"] = *req.AdmittedDate
	}
	return fields
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateCaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Update(r.Context(), chi.URLParam(r, "caseID"), req.fields()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "case not found")
			return
		}
		h.logger.Error("update case", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "caseID")})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "caseID")); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "case not found")
			return
		}
		h.logger.Error("delete case", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Rejected Write", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
