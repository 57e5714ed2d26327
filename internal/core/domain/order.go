package domain

import "time"

// Order records a committed purchase. Rows are immutable once written; they
// are only ever removed by deletion (or by cascade when the user or product
// is deleted).
type Order struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	OrderDate time.Time `json:"order_date"`
}
