package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
)

// txTimeout bounds the purchase transaction as a whole.
const txTimeout = 10 * time.Second

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// PlacePurchase commits a purchase atomically. Both decrements re-assert
// their precondition in the WHERE clause; zero rows affected means a
// concurrent writer got there first, the transaction rolls back, and
// ErrStaleState tells the caller to retry from a fresh read. Nothing is ever
// written outside this transaction.
func (r *OrderRepository) PlacePurchase(ctx context.Context, userID, productID int64, quantity int, totalCost decimal.Decimal) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin purchase: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	res, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET inventory = inventory - $2, updated_at = now()
		 WHERE id = $1 AND inventory >= $2`,
		productID, quantity)
	if err != nil {
		return 0, fmt.Errorf("decrement inventory: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("decrement inventory: %w", err)
	} else if n == 0 {
		return 0, domain.ErrStaleState
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE users
		 SET deposit = deposit - $2
		 WHERE id = $1 AND deposit >= $2`,
		userID, totalCost)
	if err != nil {
		return 0, fmt.Errorf("debit deposit: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("debit deposit: %w", err)
	} else if n == 0 {
		return 0, domain.ErrStaleState
	}

	var orderID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, product_id, quantity)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		userID, productID, quantity,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit purchase: %w", err)
	}
	return orderID, nil
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx,
		`SELECT id, user_id, product_id, quantity, order_date FROM orders ORDER BY id`)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.list(ctx,
		`SELECT id, user_id, product_id, quantity, order_date FROM orders WHERE user_id = $1 ORDER BY id`,
		userID)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &o.OrderDate); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, product_id, quantity, order_date FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &o.OrderDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete order: %w", err)
	}
	return res.RowsAffected()
}
