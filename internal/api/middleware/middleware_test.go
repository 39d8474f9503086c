package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/medwatch-backend/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_CarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	handler := chimiddleware.RequestID(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxzap.Info(r.Context(), "inside handler")
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report-session/abc", nil))

	require.Equal(t, 2, logs.Len())
	inside := logs.All()[0].ContextMap()
	finish := logs.All()[1].ContextMap()
	assert.NotEmpty(t, inside["request_id"])
	assert.Equal(t, inside["request_id"], finish["request_id"])
	assert.Equal(t, int64(http.StatusTeapot), finish["status"])
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/report-session/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, called)
}

func TestLogger_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logger(zap.NewNop()))
	r.Get("/report-session/{id}", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.CollectAndCount(metrics.HTTPRequestDuration)
	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/report-session/"+id, nil))
	}

	// One series for all three session IDs
	assert.LessOrEqual(t, testutil.CollectAndCount(metrics.HTTPRequestDuration), before+1)
}
