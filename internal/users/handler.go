package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/GenQServe/citilyst-backend/internal/platform/httpx"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
)

// Handler manages user management endpoints.
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

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceUsersProfile, rbac.ActionRead)))
		r.Get("/profile", h.getProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceUsersProfile, rbac.ActionUpdate)))
		r.Put("/profile", h.updateProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceUsers, rbac.ActionRead)))
		r.Get("/", h.listUsers)
		r.Get("/{userID}", h.getUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceUsers, rbac.ActionDelete)))
		r.Delete("/{userID}", h.deleteUser)
	})
}

type updateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	NIK         *string `json:"nik" validate:"omitempty,max=50"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=50"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	Password    *string `json:"password" validate:"omitempty,min=8"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to get users")
		return
	}
	httpx.OK(w, "Users retrieved successfully", list)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if IsNotFound(err) {
			httpx.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	httpx.OK(w, "User profile retrieved successfully", user)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	user, err := h.service.Get(r.Context(), principal.ID)
	if err != nil {
		if IsNotFound(err) {
			httpx.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get profile", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	httpx.OK(w, "User profile retrieved successfully", user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), principal.ID, ProfileUpdate{
		Name:        req.Name,
		NIK:         req.NIK,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		ImageURL:    req.ImageURL,
		Password:    req.Password,
	})
	if err != nil {
		if IsNotFound(err) {
			httpx.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("update profile", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	httpx.OK(w, "User profile updated successfully", user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		if IsNotFound(err) {
			httpx.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("delete user", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	httpx.OK(w, "User deleted successfully", nil)
}
