package products

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestConnector_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "aspirin 100", r.URL.Query().Get("name"))

		_, _ = w.Write([]byte(`{"products":[{"name":"Aspirin","dosage":"100mg","manufacturer":"Bayer"}]}`))
	}))
	defer srv.Close()

	c := NewConnector(config.ProductsConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL, RequestTimeout: time.Second},
		SearchEndpoint:   "/products",
		Retry:            retry.RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}, zaptest.NewLogger(t))

	products, err := c.Search(context.Background(), "aspirin 100")
	require.NoError(t, err)
	assert.Equal(t, []entity.Product{{Name: "Aspirin", Dosage: "100mg", Manufacturer: "Bayer"}}, products)
}

func TestMockConnector_Search(t *testing.T) {
	m := NewMockConnector(zaptest.NewLogger(t))
	ctx := context.Background()

	all, err := m.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := m.Search(ctx, "Product2")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "20mg", one[0].Dosage)

	none, err := m.Search(ctx, "ibuprofen")
	require.NoError(t, err)
	assert.Empty(t, none)
}
