package ledger

import "github.com/shopspring/decimal"

// Validate checks the preconditions for a prospective movement against the
// account state supplied by the caller. It has no side effects; the caller is
// responsible for loading a fresh balance immediately before calling.
func Validate(account Account, direction Direction, amount decimal.Decimal, category Category) error {
	if !account.Active {
		return ErrAccountInactive
	}

	switch direction {
	case DirectionCredit, DirectionDebit:
	default:
		return ErrInvalidDirection
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch category {
	case CategoryTransfer, CategoryWithdrawal, CategoryDeposit, CategoryPayment, CategoryRefund:
	default:
		return ErrInvalidCategory
	}

	if direction == DirectionDebit && amount.GreaterThan(account.Balance) {
		return ErrInsufficientFunds
	}

	return nil
}
