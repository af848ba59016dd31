package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer bank account. The balance field is mutated only by
// the movement executor's balance-update step; everything else is profile
// data owned by this package.
type Account struct {
	ID           string
	Name         string
	Email        string
	Number       string
	Balance      decimal.Decimal
	Active       bool
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
