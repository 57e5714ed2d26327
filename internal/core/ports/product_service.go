package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
)

// CreateProductInput carries the fields of a new catalog entry.
type CreateProductInput struct {
	Name        string
	Price       decimal.Decimal
	Inventory   int
	Category    string
	Description string
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	// AdjustInventory applies a signed delta; the resulting stock level can
	// never go below zero.
	AdjustInventory(ctx context.Context, id int64, delta int) (*domain.Product, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error
	// Delete returns the number of rows removed.
	Delete(ctx context.Context, id int64) (int64, error)
}
