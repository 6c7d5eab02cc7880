package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/optbazar/optbazar/internal/admin"
	"github.com/optbazar/optbazar/internal/auth"
	"github.com/optbazar/optbazar/internal/cart"
	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/observability"
	"github.com/optbazar/optbazar/internal/orders"
	"github.com/optbazar/optbazar/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	CatalogHandler *catalog.Handler
	CartHandler    *cart.Handler
	OrdersHandler  *orders.Handler
	AuthHandler    *auth.Handler
	AdminHandler   *admin.Handler
	JobsHandler    *jobs.Handler
	AuthMiddleware auth.Middleware
	Metrics        *observability.Metrics
	// Health reports dependency readiness. Nil means always healthy.
	Health func(r *http.Request) error
}

// NewRouter constructs the chi.Router with OptBazar defaults.
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
		if params.Health != nil {
			if err := params.Health(r); err != nil {
				params.Logger.Warn("health check", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.CatalogHandler != nil {
			r.Route("/products", params.CatalogHandler.MountRoutes)
		}
		if params.CartHandler != nil {
			r.Route("/cart", params.CartHandler.MountRoutes)
		}
		if params.OrdersHandler != nil {
			r.Route("/orders", params.OrdersHandler.MountRoutes)
		}
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		if params.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(params.AuthMiddleware.RequireAdmin)
				params.AdminHandler.MountRoutes(r)
				if params.JobsHandler != nil {
					r.Route("/jobs", params.JobsHandler.MountRoutes)
				}
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
