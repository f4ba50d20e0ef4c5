package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"caseledger/internal/platform/middleware"
	"caseledger/internal/transport/http/shared"
)

// Registrar is implemented by feature handlers that attach their routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports backend reachability for /healthz.
type HealthChecker func(ctx context.Context) error

// NewRouter wires all endpoints. Feature handlers stay thin and delegate to
// domain services; transport concerns (auth binding, request IDs, timeouts)
// live in the shared middleware chain.
func NewRouter(
	logger *slog.Logger,
	validator middleware.TokenValidator,
	health HealthChecker,
	handlers ...Registrar,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(validator, logger))
		for _, h := range handlers {
			h.Register(authed)
		}
	})

	return r
}
