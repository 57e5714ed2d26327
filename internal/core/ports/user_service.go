package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
)

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	// Delete removes a user account. Admin accounts cannot be deleted.
	// Returns the number of rows removed.
	Delete(ctx context.Context, id int64) (int64, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	AddDeposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.User, error)
	SubtractDeposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.User, error)
}
