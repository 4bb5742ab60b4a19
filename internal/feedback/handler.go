package feedback

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/GenQServe/citilyst-backend/internal/platform/httpx"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
)

// RepositoryPort defines data access methods for feedback.
type RepositoryPort interface {
	Create(ctx context.Context, e Entry) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
}

// Handler manages feedback endpoints. Submission is public (the path is
// exempt from the authorization gate); listing is admin only.
type Handler struct {
	logger    *slog.Logger
	repo      RepositoryPort
	checker   *rbac.Checker
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo RepositoryPort, checker *rbac.Checker) *Handler {
	return &Handler{logger: logger, repo: repo, checker: checker, validator: validator.New()}
}

// MountRoutes registers feedback routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.submit)
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceFeedbackUser, rbac.ActionRead)))
		r.Get("/", h.list)
	})
}

type submitRequest struct {
	UserName     string `json:"user_name" validate:"required,max=255"`
	UserEmail    string `json:"user_email" validate:"required,email"`
	UserImageURL string `json:"user_image_url" validate:"omitempty,url"`
	Description  string `json:"description" validate:"required,max=255"`
	Location     string `json:"location" validate:"omitempty,max=255"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := h.repo.Create(r.Context(), Entry{
		ID:           uuid.NewString(),
		UserName:     req.UserName,
		UserEmail:    req.UserEmail,
		UserImageURL: req.UserImageURL,
		Description:  req.Description,
		Location:     req.Location,
	})
	if err != nil {
		h.logger.Error("create feedback", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}
	httpx.Created(w, "Feedback submitted successfully", entry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list feedback", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch feedback")
		return
	}
	httpx.OK(w, "Feedback retrieved successfully", entries)
}
