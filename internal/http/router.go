// Package httpapi assembles the HTTP surface of the service: the shared
// middleware stack, the versioned API routes, and the operational endpoints
// for health, readiness, and Prometheus metrics.
//
// Route mounting is conditional on configuration. The document registry
// and the document proof flow both need the ledger and the content store;
// when either backend is absent the corresponding routes are simply not
// mounted, so the rest of the API keeps working on a partial deployment.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "sigil/internal/auth/handler"
	"sigil/internal/platform/metrics"
	"sigil/internal/platform/middleware"
	reghandler "sigil/internal/registry/handler"
	verifhandler "sigil/internal/verification/handler"
	"sigil/pkg/platform/httputil"
)

const readyCheckTimeout = 5 * time.Second

// ReadyCheck probes one backing dependency for the readiness endpoint.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterConfig carries everything the HTTP surface needs. Registry may be
// nil when the document backends are not configured; the document routes
// (registry and document proofs) are then left unmounted.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration

	Authenticator middleware.AccessValidator

	Auth         *authhandler.Handler
	Registry     *reghandler.Handler
	Verification *verifhandler.Handler

	ReadyChecks []ReadyCheck
}

// NewRouter builds the chi router: operational endpoints at the root,
// API routes under /api/v1, bearer-token enforcement on the protected
// subtree.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.LatencyMiddleware(cfg.Metrics))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady(cfg.ReadyChecks))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)

		cfg.Auth.Register(api)
		if cfg.Registry != nil {
			cfg.Verification.Register(api)
		}

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(cfg.Authenticator, cfg.Logger))
			cfg.Auth.RegisterProtected(protected)
			cfg.Verification.RegisterProtected(protected)
			if cfg.Registry != nil {
				cfg.Registry.RegisterProtected(protected)
			}
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady runs every configured backend probe and fails the whole
// endpoint on the first unreachable one, naming it for the operator.
func handleReady(checks []ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"failed": check.Name,
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
