package ledger

import (
	"sort"
	"sync"
)

// accountLocks serializes movement execution per account. Without it, two
// concurrent debits can read the same pre-operation balance and each compute
// a next balance that ignores the other's effect (a lost update). Locks are
// acquired in sorted id order so transfers touching the same two accounts
// from opposite directions cannot deadlock.
//
// This is an in-process serialization point, sufficient for a single-instance
// deployment. Running multiple instances against one store requires moving
// the check into the store, e.g. a compare-and-swap on the prior balance.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *accountLocks) get(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// acquire locks the given account ids and returns the matching release func.
// Duplicate ids are collapsed so locking the same account twice cannot hang.
func (l *accountLocks) acquire(ids ...string) func() {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)

	held := make([]*sync.Mutex, 0, len(unique))
	for _, id := range unique {
		m := l.get(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
