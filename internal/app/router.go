package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/112Alex/authgate/internal/auth"
	"github.com/112Alex/authgate/internal/catalog"
	"github.com/112Alex/authgate/internal/observability"
	"github.com/112Alex/authgate/internal/platform/httpx"
	"github.com/112Alex/authgate/internal/rbac"
	"github.com/112Alex/authgate/internal/roles"
	"github.com/112Alex/authgate/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	AuthMiddleware  auth.Middleware
	UsersHandler    *users.Handler
	RolesHandler    *roles.Handler
	CatalogHandler  *catalog.Handler
	RBACMiddleware  rbac.Middleware
	Pool            *pgxpool.Pool
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Authgate defaults.
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
	r.Use(params.AuthMiddleware.Authenticate)

	var pinger dbPinger
	if params.Pool != nil {
		pinger = params.Pool
	}
	r.Get("/healthz", healthHandler(pinger))

	params.AuthHandler.MountRoutes(r)
	params.UsersHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.Require(rbac.MustRequirement("read SecretDocument")))
		r.Get("/secret", func(w http.ResponseWriter, r *http.Request) {
			httpx.JSON(w, http.StatusOK, map[string]string{"secret": "This is a secret document!"})
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(params.RBACMiddleware.RequireSuperuser())
		r.Route("/roles", params.RolesHandler.MountRoutes)
		params.CatalogHandler.MountRoutes(r)
		params.UsersHandler.MountAdminRoutes(r)
		params.AuthHandler.MountAdminRoutes(r)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

// healthHandler reports readiness. A nil pinger skips the database check.
func healthHandler(db dbPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
