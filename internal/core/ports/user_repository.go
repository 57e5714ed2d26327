package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
//
// Mutating methods return the number of rows affected so callers can tell a
// missing row from a guard rejection.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (int64, error)
	// AdjustDeposit applies a signed delta to the deposit. The update is
	// guarded so the balance can never go below zero; a guard rejection
	// reports zero rows affected.
	AdjustDeposit(ctx context.Context, id int64, delta decimal.Decimal) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
