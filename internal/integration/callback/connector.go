package callback

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/integration/common"
	"github.com/futig/medwatch-backend/internal/pkg/retry"
	pkghttp "github.com/futig/medwatch-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"
	headerEvent     = "X-MedWatch-Event"
	headerSignature = "X-MedWatch-Signature"
)

// Connector posts report lifecycle events to caller supplied webhooks.
// Delivery is best effort: failures are retried, then logged.
type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	now       func() time.Time
}

func NewConnector(cfg config.CallbackConnectorConfig, logger *zap.Logger) *Connector {
	return &Connector{
		config:    cfg,
		connector: common.NewBaseConnector("callback", cfg.HTTPClientConfig, logger),
		now:       time.Now,
	}
}

func (c *Connector) SendReportSubmitted(ctx context.Context, callbackURL, requestID string, data *entity.CallbackReportSubmittedData) {
	event := &entity.CallbackEvent{Event: entity.CallbackEventTypeReportSubmitted, Data: data}
	if err := c.Send(ctx, callbackURL, requestID, event); err != nil {
		ctxzap.Error(ctx, "report submitted callback not delivered", zap.Error(err))
	}
}

func (c *Connector) SendError(ctx context.Context, callbackURL, requestID, message string, details map[string]any) {
	event := &entity.CallbackEvent{
		Event: entity.CallbackEventTypeError,
		Data: &entity.CallbackErrorData{
			Error: entity.CallbackErrorDetails{Message: message, Details: details},
		},
	}
	if err := c.Send(ctx, callbackURL, requestID, event); err != nil {
		ctxzap.Error(ctx, "error callback not delivered", zap.Error(err))
	}
}

// Send delivers one event. The body is encoded once so every retry carries
// the same bytes and the same signature.
func (c *Connector) Send(ctx context.Context, callbackURL, requestID string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = c.now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Event, err)
	}

	opts := []pkghttp.RequestOpt{
		pkghttp.WithURL(callbackURL),
		pkghttp.WithHeader(headerRequestID, requestID),
		pkghttp.WithHeader(headerEvent, string(event.Event)),
	}
	if c.config.SigningSecret != "" {
		opts = append(opts, pkghttp.WithHeader(headerSignature, Sign(c.config.SigningSecret, body)))
	}

	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
	))
	ctxzap.Debug(ctx, "sending callback event", zap.String("request_id", requestID))

	err = retry.Do(ctx, &c.config.Retry, func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, "", json.RawMessage(body), nil, opts...)
	})
	if err != nil {
		return fmt.Errorf("deliver %s event to %s: %w", event.Event, callbackURL, err)
	}

	ctxzap.Info(ctx, "callback delivered")
	return nil
}

// Sign returns the hex HMAC-SHA256 of body, prefixed with the algorithm.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
