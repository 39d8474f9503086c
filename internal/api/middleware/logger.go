package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/medwatch-backend/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Logger puts a request scoped logger carrying the request ID into the
// context, logs the outcome and records the request duration per route.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger.With(zap.String("request_id", chimiddleware.GetReqID(r.Context())))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctxzap.ToContext(r.Context(), reqLogger)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			elapsed := time.Since(start)
			metrics.HTTPRequestDuration.
				WithLabelValues(route, r.Method, fmt.Sprintf("%dxx", status/100)).
				Observe(elapsed.Seconds())

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed),
				zap.String("remote_addr", r.RemoteAddr),
			}
			switch {
			case status >= http.StatusInternalServerError:
				reqLogger.Warn("request failed", fields...)
			case r.URL.Path == "/health" || r.URL.Path == "/metrics":
				reqLogger.Debug("request served", fields...)
			default:
				reqLogger.Info("request served", fields...)
			}
		})
	}
}

// routePattern keeps metric labels bounded: session IDs in the path are
// replaced by the chi pattern that matched.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
