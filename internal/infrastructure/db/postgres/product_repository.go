package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, price, inventory, category, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Price, p.Inventory, nullable(p.Category), nullable(p.Description),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *ProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.findOne(ctx, `WHERE name = $1`, name)
}

func (r *ProductRepository) findOne(ctx context.Context, where string, arg any) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		p                     domain.Product
		category, description sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, price, inventory, category, description, created_at, updated_at
		 FROM products `+where, arg,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Inventory, &category, &description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	p.Category = category.String
	p.Description = description.String
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price, inventory, category, description, created_at, updated_at
		 FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			p                     domain.Product
			category, description sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Inventory,
			&category, &description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Category = category.String
		p.Description = description.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// AdjustInventory applies a signed delta. The WHERE guard refuses any update
// that would drive the stock level negative, reporting zero rows instead.
func (r *ProductRepository) AdjustInventory(ctx context.Context, id int64, delta int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE products
		 SET inventory = inventory + $2, updated_at = now()
		 WHERE id = $1 AND inventory + $2 >= 0`,
		id, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust inventory: %w", err)
	}
	return res.RowsAffected()
}

func (r *ProductRepository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET price = $2, updated_at = now() WHERE id = $1`,
		id, price)
	if err != nil {
		return 0, fmt.Errorf("update price: %w", err)
	}
	return res.RowsAffected()
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete product: %w", err)
	}
	return res.RowsAffected()
}

// nullable maps the empty string to NULL so optional columns stay NULL
// instead of storing empty text.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
