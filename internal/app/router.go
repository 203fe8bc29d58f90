package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bahikhata-erp/bahikhata/internal/auth"
	"github.com/bahikhata-erp/bahikhata/internal/billing"
	"github.com/bahikhata-erp/bahikhata/internal/inventory"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/firms"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/parties"
	"github.com/bahikhata-erp/bahikhata/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	AuthMiddleware   auth.Middleware
	BillingHandler   *billing.Handler
	InventoryHandler *inventory.Handler
	PartiesHandler   *parties.Handler
	FirmsHandler     *firms.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireActor)

		r.Route("/bills", params.BillingHandler.MountRoutes)
		if params.InventoryHandler != nil {
			r.Route("/stock", params.InventoryHandler.MountRoutes)
		}
		if params.PartiesHandler != nil {
			r.Route("/parties", params.PartiesHandler.MountRoutes)
		}
		if params.FirmsHandler != nil {
			r.Route("/firm", params.FirmsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
