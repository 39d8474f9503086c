package products

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/integration/common"
	"github.com/futig/medwatch-backend/internal/pkg/retry"
	pkghttp "github.com/futig/medwatch-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector looks up product details in the external product catalog
type Connector struct {
	config    config.ProductsConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ProductsConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector("products", cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Search returns catalog products matching name
func (c *Connector) Search(ctx context.Context, name string) ([]entity.Product, error) {
	ctxzap.Info(ctx, "searching products", zap.String("name", name))

	endpoint := c.config.SearchEndpoint + "?" + url.Values{"name": {name}}.Encode()

	products, err := retry.DoWithData(ctx, &c.config.Retry, func() ([]entity.Product, error) {
		var resp entity.ProductsSearchResponse
		if err := c.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
			return nil, err
		}
		return resp.Products, nil
	})
	if err != nil {
		return nil, fmt.Errorf("search products failed: %w", err)
	}

	ctxzap.Info(ctx, "products found", zap.Int("count", len(products)))

	return products, nil
}
