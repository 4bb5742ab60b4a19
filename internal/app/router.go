package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/GenQServe/citilyst-backend/internal/auth"
	"github.com/GenQServe/citilyst-backend/internal/districts"
	"github.com/GenQServe/citilyst-backend/internal/feedback"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
	"github.com/GenQServe/citilyst-backend/internal/reports"
	"github.com/GenQServe/citilyst-backend/internal/users"
	"github.com/GenQServe/citilyst-backend/internal/villages"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Gate             *rbac.Gate
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	ReportsHandler   *reports.Handler
	DistrictsHandler *districts.Handler
	VillagesHandler  *villages.Handler
	FeedbackHandler  *feedback.Handler
}

// NewRouter constructs the chi.Router with Citilyst defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Gate.Authenticate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)
	r.Route("/districts", params.DistrictsHandler.MountRoutes)
	r.Route("/villages", params.VillagesHandler.MountRoutes)
	r.Route("/feedback-user", params.FeedbackHandler.MountRoutes)

	return r
}
