package http

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type payloadKey struct{}
type bodySizeKey struct{}

func withPayload(ctx context.Context, payload []byte) context.Context {
	return context.WithValue(ctx, payloadKey{}, payload)
}

func withBodySize(ctx context.Context, size int) context.Context {
	return context.WithValue(ctx, bodySizeKey{}, size)
}

type logTransport struct {
	next http.RoundTripper
}

// RoundTrip logs through the logger carried by the request context, so
// outbound calls share the session and request fields of the caller.
func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	}
	if payload, ok := ctx.Value(payloadKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.ByteString("payload", payload))
	}
	if size, ok := ctx.Value(bodySizeKey{}).(int); ok {
		fields = append(fields, zap.Int("body_size", size))
	}
	ctxzap.Debug(ctx, "outbound request", fields...)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	fields = append(fields[:2], zap.Duration("duration", time.Since(start)))
	if err != nil {
		ctxzap.Debug(ctx, "outbound request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	ctxzap.Debug(ctx, "outbound response", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}

// WithRequestLogging logs method, URL and payload metadata of every call.
// Headers are left out because they carry the bearer token.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{next: rt}
	})
}

type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := chimiddleware.GetReqID(req.Context())
	if id == "" || req.Header.Get(chimiddleware.RequestIDHeader) != "" {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set(chimiddleware.RequestIDHeader, id)
	return t.next.RoundTrip(req)
}

// WithRequestIDPropagation forwards the inbound request ID assigned by the
// API router so a turn can be traced across collaborators.
func WithRequestIDPropagation() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &requestIDTransport{next: rt}
	})
}
