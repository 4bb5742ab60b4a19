package reports

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/GenQServe/citilyst-backend/internal/platform/httpx"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
)

const maxUploadBytes = 10 << 20

// Handler manages report and category endpoints.
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

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceReports, rbac.ActionRead)))
		r.Get("/", h.list)
		r.Get("/me", h.listMine)
		r.Get("/categories", h.listCategories)
		r.Get("/{reportID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceReports, rbac.ActionCreate)))
		r.Post("/", h.submit)
		r.Post("/upload-images", h.uploadImages)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceReports, rbac.ActionUpdate)))
		r.Post("/categories", h.createCategory)
		r.Put("/categories/{categoryID}", h.updateCategory)
		r.Delete("/categories/{categoryID}", h.deleteCategory)
		r.Patch("/{reportID}/status", h.updateStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.checker.Require(rbac.Perm(rbac.ResourceReports, rbac.ActionDelete)))
		r.Delete("/{reportID}", h.delete)
	})
}

type submitRequest struct {
	CategoryID  string   `json:"category_id" validate:"required"`
	DistrictID  string   `json:"district_id" validate:"required"`
	VillageID   string   `json:"village_id" validate:"required"`
	Description string   `json:"description" validate:"required,min=10"`
	ImageURLs   []string `json:"image_urls" validate:"max=2"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required. Please provide a valid Bearer token.")
		return
	}
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := h.service.Submit(r.Context(), SubmitInput{
		UserID:      principal.ID,
		CategoryID:  req.CategoryID,
		DistrictID:  req.DistrictID,
		VillageID:   req.VillageID,
		Description: req.Description,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			httpx.Error(w, http.StatusNotFound, "Report category not found")
		case errors.Is(err, ErrDistrictNotFound):
			httpx.Error(w, http.StatusNotFound, "District not found")
		case errors.Is(err, ErrVillageNotFound):
			httpx.Error(w, http.StatusNotFound, "Village not found")
		case errors.Is(err, ErrTooManyImages):
			httpx.Error(w, http.StatusBadRequest, "A report accepts at most 2 images")
		default:
			h.logger.Error("submit report", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Failed to submit report")
		}
		return
	}
	httpx.Created(w, "Report submitted successfully", rep)
}

func (h *Handler) uploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		httpx.Error(w, http.StatusBadRequest, "No images provided")
		return
	}
	if len(headers) > MaxImages {
		httpx.Error(w, http.StatusBadRequest, "A report accepts at most 2 images")
		return
	}
	files := make([]UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Unable to read uploaded file")
			return
		}
		defer func() {
			_ = f.Close()
		}()
		files = append(files, UploadFile{Name: fh.Filename, Content: f})
	}
	urls, err := h.service.UploadImages(r.Context(), files)
	if err != nil {
		h.logger.Error("upload report images", slog.Any("error", err))
		httpx.Error(w, http.StatusBadGateway, "Failed to upload images")
		return
	}
	httpx.OK(w, "Images uploaded successfully", map[string]any{"image_urls": urls})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required. Please provide a valid Bearer token.")
		return
	}
	// Citizens only ever see their own submissions.
	if principal.Role != rbac.RoleAdmin {
		h.respondList(w, r, principal.ID)
		return
	}
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list reports", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	httpx.OK(w, "Reports retrieved successfully", list)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required. Please provide a valid Bearer token.")
		return
	}
	h.respondList(w, r, principal.ID)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list user reports", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	httpx.OK(w, "Reports retrieved successfully", list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required. Please provide a valid Bearer token.")
		return
	}
	rep, err := h.service.Get(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		h.respondErr(w, err, "get report", "Failed to fetch report")
		return
	}
	if principal.Role != rbac.RoleAdmin && rep.UserID != principal.ID {
		httpx.Error(w, http.StatusForbidden, "Insufficient permissions to access this resource")
		return
	}
	httpx.OK(w, "Report retrieved successfully", rep)
}

type updateStatusRequest struct {
	Status   string `json:"status" validate:"required"`
	Feedback string `json:"feedback"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "reportID"), Status(req.Status), req.Feedback)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			httpx.Error(w, http.StatusBadRequest, "Status must be one of: pending, in_progress, resolved, rejected")
			return
		}
		h.respondErr(w, err, "update report status", "Failed to update report")
		return
	}
	httpx.OK(w, "Report status updated successfully", rep)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "reportID")); err != nil {
		h.respondErr(w, err, "delete report", "Failed to delete report")
		return
	}
	httpx.OK(w, "Report deleted successfully", nil)
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	httpx.OK(w, "Report categories retrieved successfully", list)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.service.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, ErrCategoryExists) {
			httpx.Error(w, http.StatusConflict, "Report category already exists")
			return
		}
		h.logger.Error("create category", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	httpx.Created(w, "Report category created successfully", category)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "categoryID"), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, ErrCategoryExists) {
			httpx.Error(w, http.StatusConflict, "Report category already exists")
			return
		}
		h.respondErr(w, err, "update category", "Failed to update category")
		return
	}
	httpx.OK(w, "Report category updated successfully", category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		h.respondErr(w, err, "delete category", "Failed to delete category")
		return
	}
	httpx.OK(w, "Report category deleted successfully", nil)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op, fallback string) {
	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "Report not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Error(w, http.StatusInternalServerError, fallback)
}
