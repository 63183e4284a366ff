package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhino-platform/rhino-access/internal/audit"
	"github.com/rhino-platform/rhino-access/internal/auth"
	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/observability"
	"github.com/rhino-platform/rhino-access/internal/rbac"
	"github.com/rhino-platform/rhino-access/internal/shared"
	"github.com/rhino-platform/rhino-access/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	UsersHandler   *users.Handler
	RBACHandler    *rbac.Handler
	AuditHandler   *audit.Handler
	Pool           *pgxpool.Pool
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with platform defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
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

	r.Route("/api/v1", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		params.CatalogHandler.MountRoutes(r)
		params.UsersHandler.MountRoutes(r)
		params.RBACHandler.MountRoutes(r)
		params.AuditHandler.MountRoutes(r)
	})

	return r
}
