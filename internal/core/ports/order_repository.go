package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
)

// OrderRepository defines the persistence contract for orders.
type OrderRepository interface {
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) (int64, error)

	// PlacePurchase commits a purchase in a single transaction: it decrements
	// the product inventory, debits the buyer's deposit, and inserts the
	// order row. Both decrements re-assert their precondition; if either row
	// changed since the caller's read, nothing is written and ErrStaleState
	// is returned so the caller can retry from a fresh read.
	PlacePurchase(ctx context.Context, userID, productID int64, quantity int, totalCost decimal.Decimal) (int64, error)
}
