package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseInput identifies who buys what. Quantity must be at least 1.
type PurchaseInput struct {
	UserID    int64
	ProductID int64
	Quantity  int
}

// PurchaseResult reports a committed purchase.
type PurchaseResult struct {
	OrderID   int64           `json:"order_id"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// OrderDetail is an order enriched with the product name at read time.
// ProductName is "Unknown" when the product has since been deleted.
type OrderDetail struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	OrderDate   time.Time `json:"order_date"`
}

type OrderService interface {
	Purchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error)
	ListAll(ctx context.Context) ([]OrderDetail, error)
	ListForUser(ctx context.Context, userID int64) ([]OrderDetail, error)
	Delete(ctx context.Context, id int64) error
}
