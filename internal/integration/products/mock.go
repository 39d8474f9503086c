package products

import (
	"context"
	"strings"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var mockCatalog = []entity.Product{
	{Name: "product1", Dosage: "10mg", Manufacturer: "manufacturer1"},
	{Name: "product2", Dosage: "20mg", Manufacturer: "manufacturer2"},
}

// MockConnector serves a fixed two-product catalog
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// Search returns every catalog product whose name contains name, or the whole catalog for an empty name
func (m *MockConnector) Search(ctx context.Context, name string) ([]entity.Product, error) {
	ctxzap.Info(ctx, "[MOCK] searching products", zap.String("name", name))

	name = strings.ToLower(strings.TrimSpace(name))

	products := make([]entity.Product, 0, len(mockCatalog))
	for _, p := range mockCatalog {
		if name == "" || strings.Contains(strings.ToLower(p.Name), name) {
			products = append(products, p)
		}
	}

	return products, nil
}
