package villages

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/GenQServe/citilyst-backend/internal/platform/httpx"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
)

// Handler manages village endpoints.
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

// MountRoutes registers village routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceVillages, rbac.ActionRead)))
		r.Get("/", h.list)
		r.Get("/{villageID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceVillages, rbac.ActionCreate)))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceVillages, rbac.ActionUpdate)))
		r.Put("/{villageID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceVillages, rbac.ActionDelete)))
		r.Delete("/{villageID}", h.delete)
	})
}

type createVillageRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	DistrictID string `json:"district_id" validate:"required"`
}

type updateVillageRequest struct {
	Name       string `json:"name" validate:"omitempty,max=255"`
	DistrictID string `json:"district_id" validate:"omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("district_id"))
	if err != nil {
		h.logger.Error("list villages", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch villages")
		return
	}
	httpx.OK(w, "Villages retrieved successfully", list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	village, err := h.service.Get(r.Context(), chi.URLParam(r, "villageID"))
	if err != nil {
		h.respondErr(w, err, "get village", "Failed to fetch village")
		return
	}
	httpx.OK(w, "Village retrieved successfully", village)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createVillageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	village, err := h.service.Create(r.Context(), req.Name, req.DistrictID)
	if err != nil {
		h.respondErr(w, err, "create village", "Failed to create village")
		return
	}
	httpx.Created(w, "Village created successfully", village)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateVillageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	village, err := h.service.Update(r.Context(), chi.URLParam(r, "villageID"), req.Name, req.DistrictID)
	if err != nil {
		h.respondErr(w, err, "update village", "Failed to update village")
		return
	}
	httpx.OK(w, "Village updated successfully", village)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "villageID")); err != nil {
		h.respondErr(w, err, "delete village", "Failed to delete village")
		return
	}
	httpx.OK(w, "Village deleted successfully", nil)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Village not found")
	case errors.Is(err, ErrDistrictNotFound):
		httpx.Error(w, http.StatusNotFound, "District not found")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, fallback)
	}
}
