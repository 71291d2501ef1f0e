package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aurora-hris/aurora-hris/internal/auth"
	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/departments"
	"github.com/aurora-hris/aurora-hris/internal/employees"
	"github.com/aurora-hris/aurora-hris/internal/nav"
	"github.com/aurora-hris/aurora-hris/internal/observability"
	"github.com/aurora-hris/aurora-hris/internal/rbac"
	"github.com/aurora-hris/aurora-hris/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Sessions           *authz.Sessions
	Gate               authz.Gate
	AuthHandler        *auth.Handler
	RBACHandler        *rbac.Handler
	NavHandler         *nav.Handler
	EmployeesHandler   *employees.Handler
	DepartmentsHandler *departments.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Aurora defaults.
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

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.NavHandler != nil {
			params.NavHandler.MountRoutes(r)
		}
		if params.RBACHandler != nil {
			params.RBACHandler.MountRoutes(r, params.Gate)
		}
		if params.EmployeesHandler != nil {
			params.EmployeesHandler.MountRoutes(r, params.Gate)
		}
		if params.DepartmentsHandler != nil {
			params.DepartmentsHandler.MountRoutes(r, params.Gate)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
