package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/api/metrics"
	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

// CatalogCache abstracts the catalog listing cache (Redis).
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]domain.Product, bool, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

// ProductService implements catalog management with a cached listing.
type ProductService struct {
	repo  ports.ProductRepository
	cache CatalogCache
	log   zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, cache CatalogCache, log zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, cache: cache, log: log}
}

// List serves the catalog cache-aside: a cache failure is logged and the
// listing falls through to the repository.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, ok, err := s.cache.GetProducts(ctx)
	if err != nil {
		metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("catalog cache read failed, falling back to store")
	} else if ok {
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return products, nil
	} else {
		metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
	}

	products, err = s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProducts(ctx, products); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache write failed")
	}
	return products, nil
}

func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidProduct
	}
	if in.Price.IsNegative() {
		return nil, domain.ErrNegativePrice
	}
	if in.Inventory < 0 {
		return nil, domain.ErrNegativeInventory
	}

	if _, err := s.repo.FindByName(ctx, in.Name); err == nil {
		return nil, domain.ErrProductExists
	} else if !errors.Is(err, domain.ErrProductNotFound) {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Product{
		Name:        in.Name,
		Price:       in.Price,
		Inventory:   in.Inventory,
		Category:    in.Category,
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info().Int64("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return created, nil
}

// AdjustInventory applies a signed delta and returns the refreshed product.
func (s *ProductService) AdjustInventory(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Inventory+delta < 0 {
		return nil, domain.ErrNegativeInventory
	}

	rows, err := s.repo.AdjustInventory(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Lost a race: the product vanished or the delta now undershoots.
		if _, findErr := s.repo.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, domain.ErrNegativeInventory
	}

	s.invalidate(ctx)
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.ErrNegativePrice
	}

	rows, err := s.repo.UpdatePrice(ctx, id, price)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProductNotFound
	}

	s.invalidate(ctx)
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) (int64, error) {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx)
	s.log.Info().Int64("product_id", id).Int64("rows", rows).Msg("product deleted")
	return rows, nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
