package domain

import "github.com/shopspring/decimal"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models an account with a stored deposit balance that funds purchases.
// The password hash is never serialized.
type User struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Role         string          `json:"role"`
	Deposit      decimal.Decimal `json:"deposit"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
