package districts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/GenQServe/citilyst-backend/internal/platform/httpx"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
)

// Handler manages district endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	checker   *rbac.Checker
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, checker *rbac.Checker) *Handler {
	return &Handler{logger: logger, service: service, checker: checker, validator: validator.New()}
}

// MountRoutes registers district routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceDistricts, rbac.ActionRead)))
		r.Get("/", h.list)
		r.Get("/{districtID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceDistricts, rbac.ActionCreate)))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceDistricts, rbac.ActionUpdate)))
		r.Put("/{districtID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceDistricts, rbac.ActionDelete)))
		r.Delete("/{districtID}", h.delete)
	})
}

type districtRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list districts", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch districts")
		return
	}
	httpx.OK(w, "Districts retrieved successfully", list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	district, err := h.service.Get(r.Context(), chi.URLParam(r, "districtID"))
	if err != nil {
		h.respondErr(w, err, "get district", "Failed to fetch district")
		return
	}
	httpx.OK(w, "District retrieved successfully", district)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req districtRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	district, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.respondErr(w, err, "create district", "Failed to create district")
		return
	}
	httpx.Created(w, "District created successfully", district)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req districtRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	district, err := h.service.Update(r.Context(), chi.URLParam(r, "districtID"), req.Name)
	if err != nil {
		h.respondErr(w, err, "update district", "Failed to update district")
		return
	}
	httpx.OK(w, "District updated successfully", district)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "districtID")); err != nil {
		h.respondErr(w, err, "delete district", "Failed to delete district")
		return
	}
	httpx.OK(w, "District deleted successfully", nil)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op, fallback string) {
	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "District not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Error(w, http.StatusInternalServerError, fallback)
}
