package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type memoryStore struct {
	mu         sync.RWMutex
	accounts   map[string]Account
	byNumber   map[string]string
	movements  map[string]Movement
	references map[string]bool

	// failure hooks, set through the helpers in testing.go
	insertErr  func(m Movement) error
	deleteErr  func(id string) error
	balanceErr func(accountID string) error
}

// NewMemory creates a concurrency-safe in-memory store for tests.
func NewMemory() Store {
	return &memoryStore{
		accounts:   make(map[string]Account),
		byNumber:   make(map[string]string),
		movements:  make(map[string]Movement),
		references: make(map[string]bool),
	}
}

func (s *memoryStore) GetAccount(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (s *memoryStore) GetAccountByNumber(_ context.Context, number string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[number]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.accounts[id], nil
}

func (s *memoryStore) InsertMovement(_ context.Context, m Movement) (Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		if err := s.insertErr(m); err != nil {
			return Movement{}, err
		}
	}
	if s.references[m.Reference] {
		return Movement{}, ErrDuplicateReference
	}
	s.movements[m.ID] = m
	s.references[m.Reference] = true
	return m, nil
}

func (s *memoryStore) DeleteMovement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		if err := s.deleteErr(id); err != nil {
			return err
		}
	}
	m, ok := s.movements[id]
	if !ok {
		return ErrAccountNotFound
	}
	delete(s.references, m.Reference)
	delete(s.movements, id)
	return nil
}

func (s *memoryStore) UpdateBalance(_ context.Context, accountID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balanceErr != nil {
		if err := s.balanceErr(accountID); err != nil {
			return err
		}
	}
	account, ok := s.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.Balance = balance
	s.accounts[accountID] = account
	return nil
}

func (s *memoryStore) ListMovements(_ context.Context, accountID string) ([]Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Movement
	for _, m := range s.movements {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memoryStore) putAccount(account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
	s.byNumber[account.Number] = account.ID
}
