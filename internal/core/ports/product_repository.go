package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
)

// ProductRepository defines the persistence contract for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	// AdjustInventory applies a signed delta to the stock level. The update
	// is guarded so inventory can never go below zero; a guard rejection
	// reports zero rows affected.
	AdjustInventory(ctx context.Context, id int64, delta int) (int64, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
