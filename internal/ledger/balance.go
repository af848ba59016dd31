package ledger

import "github.com/shopspring/decimal"

// NextBalance computes the balance that results from applying a movement.
// Unknown directions leave the balance untouched; the validator rejects them
// before any write happens.
func NextBalance(current, amount decimal.Decimal, direction Direction) decimal.Decimal {
	switch direction {
	case DirectionCredit:
		return current.Add(amount)
	case DirectionDebit:
		return current.Sub(amount)
	default:
		return current
	}
}
