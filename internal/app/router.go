package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/vb-entreprise/rrsa-server/internal/animalcare"
	"github.com/vb-entreprise/rrsa-server/internal/auth"
	"github.com/vb-entreprise/rrsa-server/internal/casefiles"
	"github.com/vb-entreprise/rrsa-server/internal/inventory"
	"github.com/vb-entreprise/rrsa-server/internal/observability"
	"github.com/vb-entreprise/rrsa-server/internal/roles"
	"github.com/vb-entreprise/rrsa-server/internal/shared"
	"github.com/vb-entreprise/rrsa-server/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	RolesHandler      *roles.Handler
	CasesHandler      *casefiles.Handler
	InventoryHandler  *inventory.Handler
	AnimalCareHandler *animalcare.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults. Each
// feature handler mounts its own routes and applies its module's
// permission gates; the router only decides where they live.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
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

	r.Route("/auth", func(r chi.Router) {
		// Tighter limit on credential guessing than the global one.
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	r.Get("/me", params.AuthHandler.Me)

	r.Route("/api/cases", params.CasesHandler.MountRoutes)
	r.Route("/api/users", params.UsersHandler.MountRoutes)
	r.Route("/api/roles", params.RolesHandler.MountRoutes)
	r.Route("/api/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/api/care-logs", params.AnimalCareHandler.MountRoutes)

	return r
}
