package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-payroll/internal/audit"
	"github.com/odyssey-erp/odyssey-payroll/internal/auth"
	"github.com/odyssey-erp/odyssey-payroll/internal/dashboard"
	"github.com/odyssey-erp/odyssey-payroll/internal/employees"
	"github.com/odyssey-erp/odyssey-payroll/internal/observability"
	"github.com/odyssey-erp/odyssey-payroll/internal/payroll"
	"github.com/odyssey-erp/odyssey-payroll/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-payroll/internal/rbac"
	"github.com/odyssey-erp/odyssey-payroll/internal/sin"
	"github.com/odyssey-erp/odyssey-payroll/internal/timesheets"
	"github.com/odyssey-erp/odyssey-payroll/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Tokens            *auth.TokenIssuer
	RBACMiddleware    rbac.Middleware
	AuthHandler       *auth.Handler
	EmployeesHandler  *employees.Handler
	SINHandler        *sin.Handler
	TimesheetsHandler *timesheets.Handler
	PayrollHandler    *payroll.Handler
	DashboardHandler  *dashboard.Handler
	AuditHandler      *audit.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "ROUTE_NOT_FOUND", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "METHOD_NOT_ALLOWED", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireBearer(params.Tokens))
		r.Use(params.RBACMiddleware.Refresh)
		if params.EmployeesHandler != nil {
			params.EmployeesHandler.MountRoutes(r)
		}
		if params.SINHandler != nil {
			params.SINHandler.MountRoutes(r)
		}
		if params.TimesheetsHandler != nil {
			params.TimesheetsHandler.MountRoutes(r)
		}
		if params.PayrollHandler != nil {
			params.PayrollHandler.MountRoutes(r)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.With(params.RBACMiddleware.RequireManager()).Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
