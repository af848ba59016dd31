package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreRejectsDuplicateReference(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	m := Movement{
		ID:        uuid.NewString(),
		AccountID: "acct-1",
		Direction: DirectionCredit,
		Amount:    dec(t, "10"),
		Category:  CategoryDeposit,
		Reference: "DEP-ABC123-XYZ789",
		Status:    StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := store.InsertMovement(ctx, m); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	dup := m
	dup.ID = uuid.NewString()
	if _, err := store.InsertMovement(ctx, dup); !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected duplicate reference error, got %v", err)
	}
}

func TestMemoryStoreDeleteFreesReference(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	m := Movement{
		ID:        uuid.NewString(),
		AccountID: "acct-1",
		Direction: DirectionCredit,
		Amount:    dec(t, "10"),
		Category:  CategoryDeposit,
		Reference: "DEP-ABC123-XYZ789",
		Status:    StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := store.InsertMovement(ctx, m); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.DeleteMovement(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// A compensated (deleted) movement releases its reference.
	if _, err := store.InsertMovement(ctx, m); err != nil {
		t.Fatalf("reinsert after delete: %v", err)
	}
}

func TestMemoryStoreAccountLookups(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedActive(store, "acct-1", "1000000001", "75.25")

	byID, err := store.GetAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	byNumber, err := store.GetAccountByNumber(ctx, "1000000001")
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if byID.ID != byNumber.ID || !byID.Balance.Equal(byNumber.Balance) {
		t.Fatalf("lookups disagree: %+v vs %+v", byID, byNumber)
	}

	if _, err := store.GetAccountByNumber(ctx, "0000000000"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.UpdateBalance(ctx, "ghost", dec(t, "1")); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}
