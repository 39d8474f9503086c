package callback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestConnector(t *testing.T) *Connector {
	return NewConnector(config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{RequestTimeout: time.Second},
		Retry:            retry.RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}, zaptest.NewLogger(t))
}

func TestConnector_SendReportSubmitted(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		received <- body
	}))
	defer srv.Close()

	c := newTestConnector(t)
	c.SendReportSubmitted(context.Background(), srv.URL, "req-42", &entity.CallbackReportSubmittedData{
		ReportID:  "r1",
		SessionID: "s1",
		Answered:  41,
	})

	body := <-received
	assert.Equal(t, "reportSubmitted", body["event"])
	assert.NotEmpty(t, body["timestamp"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "r1", data["report_id"])
	assert.Equal(t, float64(41), data["answered_questions"])
}

func TestConnector_Send_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestConnector(t)
	err := c.Send(context.Background(), srv.URL, "req", &entity.CallbackEvent{Event: entity.CallbackEventTypeError})

	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestConnector_SendError(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		received <- body
	}))
	defer srv.Close()

	c := newTestConnector(t)
	c.SendError(context.Background(), srv.URL, "s1", "report could not be saved", map[string]any{"session_id": "s1"})

	body := <-received
	assert.Equal(t, "error", body["event"])

	data := body["data"].(map[string]any)
	details := data["error"].(map[string]any)
	assert.Equal(t, "report could not be saved", details["message"])
}

func TestConnector_Send_SignsBody(t *testing.T) {
	type delivery struct {
		body      []byte
		event     string
		signature string
	}
	received := make(chan delivery, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		received <- delivery{body: body, event: r.Header.Get(headerEvent), signature: r.Header.Get(headerSignature)}
	}))
	defer srv.Close()

	c := NewConnector(config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{RequestTimeout: time.Second},
		SigningSecret:    "s3cret",
		Retry:            retry.RetryConfig{Attempts: 1},
	}, zaptest.NewLogger(t))
	c.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

	err := c.Send(context.Background(), srv.URL, "req", &entity.CallbackEvent{
		Event: entity.CallbackEventTypeReportSubmitted,
		Data:  &entity.CallbackReportSubmittedData{ReportID: "r1", SessionID: "s1"},
	})
	require.NoError(t, err)

	got := <-received
	assert.Equal(t, "reportSubmitted", got.event)
	assert.Equal(t, Sign("s3cret", got.body), got.signature)
	assert.Contains(t, string(got.body), `"timestamp":"2025-03-01T09:30:00Z"`)
}

func TestSign(t *testing.T) {
	assert.Equal(t, "sha256=a777724d943eb48dc69bca8a4a6d57a04db3f9ec7e1de4e581e860265bdf3032", Sign("key", []byte("{}")))
	assert.NotEqual(t, Sign("key", []byte("{}")), Sign("other", []byte("{}")))
}
