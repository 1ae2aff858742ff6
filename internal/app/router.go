package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
	"github.com/cumbre-erp/cumbre/internal/ledger/integration"
	"github.com/cumbre-erp/cumbre/internal/ledger/periods"
	"github.com/cumbre-erp/cumbre/internal/ledger/reports"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
	"github.com/cumbre-erp/cumbre/internal/observability"
	"github.com/cumbre-erp/cumbre/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Metrics            *observability.Metrics
	AccountsHandler    *accounts.Handler
	VouchersHandler    *vouchers.Handler
	PeriodsHandler     *periods.Handler
	ReportsHandler     *reports.Handler
	IntegrationHandler *integration.Handler
	JobsHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with Cumbre defaults.
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

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if params.AccountsHandler != nil {
			params.AccountsHandler.MountRoutes(r)
		}
		if params.VouchersHandler != nil {
			params.VouchersHandler.MountRoutes(r)
		}
		if params.PeriodsHandler != nil {
			params.PeriodsHandler.MountRoutes(r)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
		if params.IntegrationHandler != nil {
			params.IntegrationHandler.MountRoutes(r)
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
