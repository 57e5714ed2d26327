package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/api/metrics"
	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

// purchaseAttempts bounds how often a purchase restarts after losing a
// commit race. Each attempt re-reads user and product state.
const purchaseAttempts = 3

// unknownProductName labels orders whose product has since been deleted.
const unknownProductName = "Unknown"

// OrderService implements purchase processing and order queries.
type OrderService struct {
	userRepo    ports.UserRepository
	productRepo ports.ProductRepository
	orderRepo   ports.OrderRepository
	cache       CatalogCache
	log         zerolog.Logger
}

func NewOrderService(
	userRepo ports.UserRepository,
	productRepo ports.ProductRepository,
	orderRepo ports.OrderRepository,
	cache CatalogCache,
	log zerolog.Logger,
) *OrderService {
	return &OrderService{
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cache:       cache,
		log:         log,
	}
}

// Purchase runs the full order placement sequence: validate the quantity,
// load buyer and product, reject on missing stock or funds, then commit
// atomically. A commit that loses against a concurrent mutation restarts
// from the load step so every rejection reflects live state.
func (s *OrderService) Purchase(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
	start := time.Now()
	result, err := s.purchase(ctx, in)
	metrics.PurchaseDuration.Observe(time.Since(start).Seconds())
	metrics.PurchasesTotal.WithLabelValues(purchaseResultLabel(err)).Inc()
	return result, err
}

func (s *OrderService) purchase(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
	if in.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	for attempt := 1; attempt <= purchaseAttempts; attempt++ {
		result, err := s.attemptPurchase(ctx, in)
		if errors.Is(err, domain.ErrStaleState) {
			metrics.PurchaseRetriesTotal.Inc()
			s.log.Debug().
				Int64("user_id", in.UserID).
				Int64("product_id", in.ProductID).
				Int("attempt", attempt).
				Msg("purchase commit conflicted, retrying")
			continue
		}
		return result, err
	}

	s.log.Error().
		Int64("user_id", in.UserID).
		Int64("product_id", in.ProductID).
		Int("attempts", purchaseAttempts).
		Msg("purchase gave up after repeated commit conflicts")
	return nil, domain.ErrTransactionFailed
}

func (s *OrderService) attemptPurchase(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
	user, err := s.userRepo.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if product.Inventory < in.Quantity {
		return nil, &domain.InsufficientInventoryError{Available: product.Inventory}
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if user.Deposit.LessThan(total) {
		return nil, domain.ErrInsufficientDeposit
	}

	orderID, err := s.orderRepo.PlacePurchase(ctx, in.UserID, in.ProductID, in.Quantity, total)
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return nil, err
		}
		s.log.Error().Err(err).
			Int64("user_id", in.UserID).
			Int64("product_id", in.ProductID).
			Msg("purchase commit failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	// Inventory changed; the cached listing is stale.
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}

	s.log.Info().
		Int64("order_id", orderID).
		Int64("user_id", in.UserID).
		Int64("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Str("total", total.String()).
		Msg("purchase committed")

	return &ports.PurchaseResult{OrderID: orderID, TotalCost: total}, nil
}

func purchaseResultLabel(err error) string {
	var inv *domain.InsufficientInventoryError
	switch {
	case err == nil:
		return "committed"
	case errors.As(err, &inv):
		return "insufficient_inventory"
	case errors.Is(err, domain.ErrInsufficientDeposit):
		return "insufficient_deposit"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return "error"
	}
}

// ListAll returns every order, each enriched with the current product name.
func (s *OrderService) ListAll(ctx context.Context) ([]ports.OrderDetail, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, orders)
}

// ListForUser returns the given user's orders, enriched the same way.
func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]ports.OrderDetail, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, orders)
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	rows, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOrderNotFound
	}

	s.log.Info().Int64("order_id", id).Msg("order deleted")
	return nil
}

// enrich joins in the product name at read time. Names are resolved once per
// distinct product; deleted products render as "Unknown".
func (s *OrderService) enrich(ctx context.Context, orders []domain.Order) ([]ports.OrderDetail, error) {
	names := make(map[int64]string)
	details := make([]ports.OrderDetail, 0, len(orders))

	for _, o := range orders {
		name, ok := names[o.ProductID]
		if !ok {
			product, err := s.productRepo.FindByID(ctx, o.ProductID)
			switch {
			case err == nil:
				name = product.Name
			case errors.Is(err, domain.ErrProductNotFound):
				name = unknownProductName
			default:
				return nil, err
			}
			names[o.ProductID] = name
		}

		details = append(details, ports.OrderDetail{
			ID:          o.ID,
			UserID:      o.UserID,
			ProductID:   o.ProductID,
			ProductName: name,
			Quantity:    o.Quantity,
			OrderDate:   o.OrderDate,
		})
	}
	return details, nil
}
