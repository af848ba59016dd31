package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether a movement adds to or removes from a balance.
type Direction string

const (
	// DirectionCredit increases the account balance.
	DirectionCredit Direction = "credit"
	// DirectionDebit decreases the account balance.
	DirectionDebit Direction = "debit"
)

// Category classifies the business purpose of a movement.
type Category string

const (
	CategoryTransfer   Category = "transfer"
	CategoryWithdrawal Category = "withdrawal"
	CategoryDeposit    Category = "deposit"
	CategoryPayment    Category = "payment"
	CategoryRefund     Category = "refund"
)

// Status is the lifecycle state of a movement record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var (
	// ErrAccountNotFound occurs when the acting account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInactive occurs when the acting account is deactivated and
	// therefore barred from all money movement.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrInvalidDirection occurs when a movement direction is neither credit nor debit.
	ErrInvalidDirection = errors.New("invalid movement direction")

	// ErrInvalidAmount occurs when a movement amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidCategory occurs when a movement category is not recognised.
	ErrInvalidCategory = errors.New("invalid movement category")

	// ErrInsufficientFunds occurs when a debit would drive the balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrRecipientNotFound occurs when the transfer recipient account number
	// does not resolve to an account.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrRecipientInactive occurs when the transfer recipient is deactivated.
	ErrRecipientInactive = errors.New("recipient is inactive")

	// ErrSelfTransfer occurs when sender and recipient are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to own account")

	// ErrTransactionFailed indicates a write step failed and all prior steps
	// were successfully compensated; no net change was persisted.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrCompensationFailed indicates a write step failed AND at least one
	// compensating action also failed. The store is now inconsistent and
	// requires manual reconciliation. Never collapsed into ErrTransactionFailed.
	ErrCompensationFailed = errors.New("compensation failed")

	// ErrDuplicateReference is returned by stores when a movement insert hits
	// the reference uniqueness constraint. The executor retries with a fresh
	// reference instead of surfacing this error.
	ErrDuplicateReference = errors.New("duplicate movement reference")
)

// Account is the engine's view of an account: just enough state to validate
// and settle movements. The full profile lives in the account package.
type Account struct {
	ID      string
	Number  string
	Balance decimal.Decimal
	Active  bool
}

// Movement is a single signed ledger entry against one account. Records are
// append-only; a movement is deleted only as a compensating rollback action.
type Movement struct {
	ID           string
	AccountID    string
	Direction    Direction
	Amount       decimal.Decimal
	Description  string
	Counterparty string
	Category     Category
	Reference    string
	Status       Status
	CreatedAt    time.Time
}

// Store is the engine's contract with the backing row store. Each call is an
// independent point read or write; the engine never assumes a multi-statement
// transaction spanning calls, which is why the saga in saga.go exists.
type Store interface {
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountByNumber(ctx context.Context, number string) (Account, error)
	InsertMovement(ctx context.Context, m Movement) (Movement, error)
	DeleteMovement(ctx context.Context, id string) error
	UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
	ListMovements(ctx context.Context, accountID string) ([]Movement, error)
}
