package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ccube-expense/ccube-expense/internal/auth"
	"github.com/ccube-expense/ccube-expense/internal/expense"
	"github.com/ccube-expense/ccube-expense/internal/export"
	"github.com/ccube-expense/ccube-expense/internal/observability"
	"github.com/ccube-expense/ccube-expense/internal/platform/httpx"
	"github.com/ccube-expense/ccube-expense/internal/project"
	"github.com/ccube-expense/ccube-expense/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Sessions       *auth.SessionManager
	Metrics        *observability.Metrics
	AuthHandler    *auth.Handler
	ExpenseHandler *expense.Handler
	ProjectHandler *project.Handler
	ExportHandler  *export.Handler
	JobsHandler    *jobs.Handler
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Sessions: params.Sessions,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		params.ExpenseHandler.MountRoutes(r, auth.RequireAdmin)
		params.ProjectHandler.MountRoutes(r, auth.RequireAdmin)
		params.ExportHandler.MountRoutes(r, auth.RequireAdmin)

		if params.JobsHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				params.JobsHandler.MountRoutes(r)
			})
		}

		// Suggestion list only; the core never validates against it.
		employees := []string(nil)
		if params.Config != nil {
			employees = params.Config.Employees
		}
		r.Get("/employees", func(w http.ResponseWriter, _ *http.Request) {
			httpx.JSON(w, http.StatusOK, employees)
		})
	})

	return r
}
