package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must be 1-10 alphanumeric characters")
	ErrInvalidPassword    = errors.New("password must be 6-20 characters")

	ErrProductNotFound   = errors.New("product not found")
	ErrProductExists     = errors.New("product already exists")
	ErrInvalidProduct    = errors.New("product name is required")
	ErrNegativeInventory = errors.New("inventory cannot be negative")

	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInsufficientDeposit = errors.New("insufficient deposit")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNegativePrice       = errors.New("price cannot be negative")

	ErrForbidden   = errors.New("access forbidden")
	ErrInvalidRole = errors.New("invalid role")

	// ErrStaleState signals that a compare-and-commit lost the race against a
	// concurrent mutation and the whole operation should be retried from a
	// fresh read.
	ErrStaleState = errors.New("stale state, concurrent modification")

	// ErrTransactionFailed covers persistence failures during an atomic
	// commit; the store guarantees no partial mutation is visible.
	ErrTransactionFailed = errors.New("transaction failed")
)

// InsufficientInventoryError rejects a purchase that exceeds current stock.
// It carries the quantity still available so callers can report it.
type InsufficientInventoryError struct {
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory (available: %d)", e.Available)
}
