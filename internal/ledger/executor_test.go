package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nzuri-bank/nzuri/internal/logging"
)

func newTestService(store Store) *Service {
	return NewService(store, logging.Discard(), nil)
}

func seedActive(store Store, id, number, balance string) Account {
	b, _ := decimal.NewFromString(balance)
	account := Account{ID: id, Number: number, Balance: b, Active: true}
	SeedAccount(store, account)
	return account
}

func TestExecuteMovementDeposit(t *testing.T) {
	store := NewMemory()
	seedActive(store, "acct-1", "1000000001", "100")
	svc := newTestService(store)

	res, err := svc.ExecuteMovement(context.Background(), MovementInput{
		AccountID:   "acct-1",
		Direction:   DirectionCredit,
		Amount:      dec(t, "50"),
		Description: "Deposit",
		Category:    CategoryDeposit,
	})
	if err != nil {
		t.Fatalf("execute movement: %v", err)
	}

	if !res.Balance.Equal(dec(t, "150")) {
		t.Fatalf("expected balance 150, got %s", res.Balance)
	}
	if res.Movement.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %s", res.Movement.Status)
	}
	if !strings.HasPrefix(res.Movement.Reference, "DEP-") {
		t.Fatalf("expected DEP- reference, got %s", res.Movement.Reference)
	}

	stored, err := store.GetAccount(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !stored.Balance.Equal(dec(t, "150")) {
		t.Fatalf("stored balance = %s, want 150", stored.Balance)
	}
	if MovementCount(store) != 1 {
		t.Fatalf("expected 1 movement, got %d", MovementCount(store))
	}
}

func TestExecuteMovementInsufficientFundsWritesNothing(t *testing.T) {
	store := NewMemory()
	seedActive(store, "acct-1", "1000000001", "100")
	svc := newTestService(store)

	_, err := svc.ExecuteMovement(context.Background(), MovementInput{
		AccountID: "acct-1",
		Direction: DirectionDebit,
		Amount:    dec(t, "100.01"),
		Category:  CategoryWithdrawal,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if MovementCount(store) != 0 {
		t.Fatalf("expected zero movements, got %d", MovementCount(store))
	}
	stored, _ := store.GetAccount(context.Background(), "acct-1")
	if !stored.Balance.Equal(dec(t, "100")) {
		t.Fatalf("balance changed to %s", stored.Balance)
	}
}

func TestExecuteMovementInactiveAccountWritesNothing(t *testing.T) {
	store := NewMemory()
	SeedAccount(store, Account{ID: "acct-1", Number: "1000000001", Balance: dec(t, "100"), Active: false})
	svc := newTestService(store)

	_, err := svc.ExecuteMovement(context.Background(), MovementInput{
		AccountID: "acct-1",
		Direction: DirectionCredit,
		Amount:    dec(t, "10"),
		Category:  CategoryDeposit,
	})
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected inactive error, got %v", err)
	}
	if MovementCount(store) != 0 {
		t.Fatalf("expected zero movements, got %d", MovementCount(store))
	}
}

func TestExecuteMovementUnknownAccount(t *testing.T) {
	svc := newTestService(NewMemory())

	_, err := svc.ExecuteMovement(context.Background(), MovementInput{
		AccountID: "ghost",
		Direction: DirectionCredit,
		Amount:    dec(t, "10"),
		Category:  CategoryDeposit,
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestExecuteMovementBalanceFailureCompensates(t *testing.T) {
	store := NewMemory()
	seedActive(store, "acct-1", "1000000001", "100")
	FailUpdateBalance(store, "acct-1", errors.New("write timeout"))
	svc := newTestService(store)

	_, err := svc.ExecuteMovement(context.Background(), MovementInput{
		AccountID: "acct-1",
		Direction: DirectionCredit,
		Amount:    dec(t, "25"),
		Category:  CategoryDeposit,
	})
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected transaction failed, got %v", err)
	}
	if errors.Is(err, ErrCompensationFailed) {
		t.Fatalf("clean rollback must not report compensation failure: %v", err)
	}

	// The inserted movement must have been deleted and the balance untouched.
	if MovementCount(store) != 0 {
		t.Fatalf("expected zero surviving movements, got %d", MovementCount(store))
	}
	stored, _ := store.GetAccount(context.Background(), "acct-1")
	if !stored.Balance.Equal(dec(t, "100")) {
		t.Fatalf("balance changed to %s", stored.Balance)
	}
}

func TestExecuteMovementCompensationFailureIsDistinct(t *testing.T) {
	store := NewMemory()
	seedActive(store, "acct-1", "1000000001", "100")
	FailUpdateBalance(store, "acct-1", errors.New("write timeout"))
	FailDeleteMovement(store, errors.New("delete rejected"))
	svc := newTestService(store)

	_, err := svc.ExecuteMovement(context.Background(), MovementInput{
		AccountID: "acct-1",
		Direction: DirectionCredit,
		Amount:    dec(t, "25"),
		Category:  CategoryDeposit,
	})
	if !errors.Is(err, ErrCompensationFailed) {
		t.Fatalf("expected compensation failed, got %v", err)
	}
	if errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("compensation failure must not collapse into transaction failed")
	}

	var cerr *CompensationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CompensationError, got %T", err)
	}
	if len(cerr.Failures) != 1 || cerr.Failures[0].Step != "insert_movement" {
		t.Fatalf("unexpected failures: %+v", cerr.Failures)
	}
}

func TestExecuteMovementRetriesDuplicateReference(t *testing.T) {
	store := NewMemory()
	seedActive(store, "acct-1", "1000000001", "100")

	var mu sync.Mutex
	collisions := 0
	FailInsertMovement(store, ErrDuplicateReference, func(Movement) bool {
		mu.Lock()
		defer mu.Unlock()
		if collisions < 2 {
			collisions++
			return true
		}
		return false
	})
	svc := newTestService(store)

	res, err := svc.ExecuteMovement(context.Background(), MovementInput{
		AccountID: "acct-1",
		Direction: DirectionCredit,
		Amount:    dec(t, "10"),
		Category:  CategoryDeposit,
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if res.Movement.Reference == "" {
		t.Fatal("expected a reference on the inserted movement")
	}
	if collisions != 2 {
		t.Fatalf("expected 2 simulated collisions, got %d", collisions)
	}
}

func TestConcurrentDebitsSerialize(t *testing.T) {
	store := NewMemory()
	seedActive(store, "acct-1", "1000000001", "100")
	svc := newTestService(store)

	// Two concurrent debits of 60 cannot both succeed against a balance of
	// 100: the per-account lock forces the second to validate against the
	// post-debit balance.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.ExecuteMovement(context.Background(), MovementInput{
				AccountID: "acct-1",
				Direction: DirectionDebit,
				Amount:    dec(t, "60"),
				Category:  CategoryWithdrawal,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one rejection, got %d/%d", succeeded, insufficient)
	}

	stored, _ := store.GetAccount(context.Background(), "acct-1")
	if !stored.Balance.Equal(dec(t, "40")) {
		t.Fatalf("expected balance 40, got %s", stored.Balance)
	}
}

func TestSerialHistoryBalanceInvariant(t *testing.T) {
	store := NewMemory()
	seedActive(store, "acct-1", "1000000001", "250")
	svc := newTestService(store)
	ctx := context.Background()

	ops := []struct {
		direction Direction
		amount    string
		category  Category
	}{
		{DirectionCredit, "100.25", CategoryDeposit},
		{DirectionDebit, "30.50", CategoryWithdrawal},
		{DirectionDebit, "19.75", CategoryPayment},
		{DirectionCredit, "5.00", CategoryRefund},
	}

	expected := dec(t, "250")
	for i, op := range ops {
		res, err := svc.ExecuteMovement(ctx, MovementInput{
			AccountID:   "acct-1",
			Direction:   op.direction,
			Amount:      dec(t, op.amount),
			Description: fmt.Sprintf("op %d", i),
			Category:    op.category,
		})
		if err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		expected = NextBalance(expected, dec(t, op.amount), op.direction)
		if !res.Balance.Equal(expected) {
			t.Fatalf("op %d: balance %s, want %s", i, res.Balance, expected)
		}
	}

	// Balance equals the initial balance plus the signed sum of all
	// completed movements.
	movements, err := svc.Movements(ctx, "acct-1")
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	sum := dec(t, "250")
	for _, m := range movements {
		if m.Status != StatusCompleted {
			t.Fatalf("unexpected status %s", m.Status)
		}
		sum = NextBalance(sum, m.Amount, m.Direction)
	}
	stored, _ := store.GetAccount(ctx, "acct-1")
	if !stored.Balance.Equal(sum) {
		t.Fatalf("stored balance %s does not equal signed movement sum %s", stored.Balance, sum)
	}
}
