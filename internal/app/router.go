package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dentalog/dentalog/internal/auth"
	"github.com/dentalog/dentalog/internal/dashboard"
	"github.com/dentalog/dentalog/internal/export"
	"github.com/dentalog/dentalog/internal/presets"
	"github.com/dentalog/dentalog/internal/records"
	"github.com/dentalog/dentalog/internal/settings"
	"github.com/dentalog/dentalog/internal/shared"
	"github.com/dentalog/dentalog/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	RecordsHandler   *records.Handler
	PresetsHandler   *presets.Handler
	SettingsHandler  *settings.Handler
	ExportHandler    *export.Handler
	DashboardHandler *dashboard.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router serving the dashboard API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth)
		params.RecordsHandler.MountRoutes(r)
		params.PresetsHandler.MountRoutes(r)
		params.SettingsHandler.MountRoutes(r)
		params.ExportHandler.MountRoutes(r)
		params.DashboardHandler.MountRoutes(r)
	})

	return r
}
