package api

import (
	"context"
	"net/http"
	"time"

	"github.com/futig/medwatch-backend/internal/api/docs"
	"github.com/futig/medwatch-backend/internal/api/middleware"
	reportapi "github.com/futig/medwatch-backend/internal/api/report"
	"github.com/futig/medwatch-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterOptions struct {
	// RequestTimeout bounds every request; it must outlive an LLM correction.
	RequestTimeout time.Duration
	// Dependencies are checked by /ready, keyed by name.
	Dependencies map[string]Pinger
}

// SetupRouter mounts the report API, health checks, metrics and docs.
func SetupRouter(reportHandler *reportapi.Handler, logger *zap.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	if opts.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})
	r.Get("/ready", readyHandler(opts.Dependencies))
	r.Handle("/metrics", promhttp.Handler())

	docs.RegisterRoutes(r)
	reportapi.RegisterRoutes(r, reportHandler)

	return r
}

func readyHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		status := http.StatusOK
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				ctxzap.Warn(ctx, "dependency not ready", zap.String("dependency", name), zap.Error(err))
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		response.JSON(w, status, checks)
	}
}
