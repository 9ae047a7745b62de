package catalog

import (
	"context"

	"storefront-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type staticCatalog struct {
	products []domain.Product
}

// NewStaticCatalog serves the fixed demo product list.
func NewStaticCatalog() domain.ProductCatalog {
	return &staticCatalog{
		products: []domain.Product{
			{ID: 1, Name: "Laptop Pro", Price: decimal.NewFromInt(1000)},
			{ID: 2, Name: "Teclado Mecánico", Price: decimal.NewFromInt(2000)},
			{ID: 3, Name: "Mouse Inalámbrico", Price: decimal.NewFromInt(500)},
			{ID: 4, Name: "Monitor 4K", Price: decimal.NewFromInt(10000)},
			{ID: 5, Name: "Webcam HD", Price: decimal.NewFromInt(50000)},
			{ID: 6, Name: "Audífonos Bluetooth", Price: decimal.NewFromInt(30000)},
		},
	}
}

func (c *staticCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}
