package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nzuri-bank/nzuri/internal/notification"
)

// referenceAttempts bounds regeneration when an insert collides on the
// reference unique index.
const referenceAttempts = 3

// Service orchestrates money movements against the store. Writes are strictly
// ordered: the ledger insert happens before the balance update, so a crash in
// between leaves a traceable movement record rather than an unexplained
// balance change.
type Service struct {
	store    Store
	locks    *accountLocks
	logger   *slog.Logger
	notifier notification.Notifier
}

// NewService builds a movement executor over the given store.
func NewService(store Store, logger *slog.Logger, notifier notification.Notifier) *Service {
	return &Service{
		store:    store,
		locks:    newAccountLocks(),
		logger:   logger,
		notifier: notifier,
	}
}

// MovementInput captures a single-account money movement request.
type MovementInput struct {
	AccountID    string
	Direction    Direction
	Amount       decimal.Decimal
	Description  string
	Counterparty string
	Category     Category
}

// MovementResult is the outcome of a successful movement.
type MovementResult struct {
	Movement Movement
	Balance  decimal.Decimal
}

// TransferInput captures a two-account transfer request.
type TransferInput struct {
	SenderID        string
	RecipientNumber string
	Amount          decimal.Decimal
	Description     string
}

// TransferResult is the outcome of a successful transfer, reported from the
// sender's perspective.
type TransferResult struct {
	Movement Movement
	Balance  decimal.Decimal
}

// ExecuteMovement validates and settles a single-account movement: insert the
// ledger record, then update the balance, deleting the record again if the
// balance write fails.
func (s *Service) ExecuteMovement(ctx context.Context, input MovementInput) (MovementResult, error) {
	unlock := s.locks.acquire(input.AccountID)
	defer unlock()

	account, err := s.store.GetAccount(ctx, input.AccountID)
	if err != nil {
		return MovementResult{}, ErrAccountNotFound
	}

	if err := Validate(account, input.Direction, input.Amount, input.Category); err != nil {
		return MovementResult{}, err
	}

	movement := Movement{
		ID:           uuid.NewString(),
		AccountID:    account.ID,
		Direction:    input.Direction,
		Amount:       input.Amount,
		Description:  input.Description,
		Counterparty: input.Counterparty,
		Category:     input.Category,
		Status:       StatusCompleted,
		CreatedAt:    time.Now().UTC(),
	}
	next := NextBalance(account.Balance, input.Amount, input.Direction)

	sg := newSaga("execute_movement", s.logger)
	sg.add("insert_movement",
		func(ctx context.Context) error {
			inserted, err := s.insertWithReference(ctx, movement)
			if err != nil {
				return err
			}
			movement = inserted
			return nil
		},
		func(ctx context.Context) error {
			return s.store.DeleteMovement(ctx, movement.ID)
		},
	)
	sg.add("update_balance",
		func(ctx context.Context) error {
			return s.store.UpdateBalance(ctx, account.ID, next)
		},
		nil,
	)

	if err := sg.execute(ctx); err != nil {
		return MovementResult{}, err
	}

	s.logger.Info("movement completed",
		"account_id", account.ID,
		"reference", movement.Reference,
		"direction", movement.Direction,
		"category", movement.Category,
		"amount", movement.Amount.String())

	return MovementResult{Movement: movement, Balance: next}, nil
}

// ExecuteTransfer settles a two-account transfer: a debit movement on the
// sender and a credit movement on the recipient, each naming the other as
// counterparty, then both balance updates. Any step failure compensates all
// prior steps in reverse order, including restoring the sender's balance.
func (s *Service) ExecuteTransfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	recipient, err := s.store.GetAccountByNumber(ctx, input.RecipientNumber)
	if err != nil {
		return TransferResult{}, ErrRecipientNotFound
	}
	if recipient.ID == input.SenderID {
		return TransferResult{}, ErrSelfTransfer
	}

	unlock := s.locks.acquire(input.SenderID, recipient.ID)
	defer unlock()

	// Reload both under the lock so validation sees fresh balances.
	sender, err := s.store.GetAccount(ctx, input.SenderID)
	if err != nil {
		return TransferResult{}, ErrAccountNotFound
	}
	recipient, err = s.store.GetAccount(ctx, recipient.ID)
	if err != nil {
		return TransferResult{}, ErrRecipientNotFound
	}
	if !recipient.Active {
		return TransferResult{}, ErrRecipientInactive
	}

	if err := Validate(sender, DirectionDebit, input.Amount, CategoryTransfer); err != nil {
		return TransferResult{}, err
	}

	now := time.Now().UTC()
	debit := Movement{
		ID:           uuid.NewString(),
		AccountID:    sender.ID,
		Direction:    DirectionDebit,
		Amount:       input.Amount,
		Description:  input.Description,
		Counterparty: recipient.Number,
		Category:     CategoryTransfer,
		Status:       StatusCompleted,
		CreatedAt:    now,
	}
	credit := Movement{
		ID:           uuid.NewString(),
		AccountID:    recipient.ID,
		Direction:    DirectionCredit,
		Amount:       input.Amount,
		Description:  input.Description,
		Counterparty: sender.Number,
		Category:     CategoryTransfer,
		Status:       StatusCompleted,
		CreatedAt:    now,
	}

	senderNext := NextBalance(sender.Balance, input.Amount, DirectionDebit)
	recipientNext := NextBalance(recipient.Balance, input.Amount, DirectionCredit)

	sg := newSaga("execute_transfer", s.logger)
	sg.add("insert_sender_debit",
		func(ctx context.Context) error {
			inserted, err := s.insertWithReference(ctx, debit)
			if err != nil {
				return err
			}
			debit = inserted
			return nil
		},
		func(ctx context.Context) error {
			return s.store.DeleteMovement(ctx, debit.ID)
		},
	)
	sg.add("insert_recipient_credit",
		func(ctx context.Context) error {
			inserted, err := s.insertWithReference(ctx, credit)
			if err != nil {
				return err
			}
			credit = inserted
			return nil
		},
		func(ctx context.Context) error {
			return s.store.DeleteMovement(ctx, credit.ID)
		},
	)
	sg.add("update_sender_balance",
		func(ctx context.Context) error {
			return s.store.UpdateBalance(ctx, sender.ID, senderNext)
		},
		func(ctx context.Context) error {
			return s.store.UpdateBalance(ctx, sender.ID, sender.Balance)
		},
	)
	sg.add("update_recipient_balance",
		func(ctx context.Context) error {
			return s.store.UpdateBalance(ctx, recipient.ID, recipientNext)
		},
		nil,
	)

	if err := sg.execute(ctx); err != nil {
		return TransferResult{}, err
	}

	s.logger.Info("transfer completed",
		"sender_id", sender.ID,
		"recipient_number", recipient.Number,
		"reference", debit.Reference,
		"amount", input.Amount.String())

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransferReceived,
			Destination: recipient.ID,
			Body:        fmt.Sprintf("You received %s from account %s", input.Amount.String(), sender.Number),
		})
	}

	return TransferResult{Movement: debit, Balance: senderNext}, nil
}

// Movements returns the movement history for an account, newest first.
func (s *Service) Movements(ctx context.Context, accountID string) ([]Movement, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, ErrAccountNotFound
	}
	return s.store.ListMovements(ctx, accountID)
}

// insertWithReference generates a reference and inserts the movement,
// regenerating on a reference collision. The unique index is the real
// uniqueness guarantee; the generator only makes collisions rare.
func (s *Service) insertWithReference(ctx context.Context, m Movement) (Movement, error) {
	var lastErr error
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		m.Reference = NewReference(m.Category)
		inserted, err := s.store.InsertMovement(ctx, m)
		if err == nil {
			return inserted, nil
		}
		if !errors.Is(err, ErrDuplicateReference) {
			return Movement{}, err
		}
		lastErr = err
	}
	return Movement{}, fmt.Errorf("generate unique reference: %w", lastErr)
}
