package ledger

// Helpers for seeding and fault injection against the in-memory store. They
// are no-ops for any other Store implementation.

// SeedAccount installs an account in the in-memory store.
func SeedAccount(s Store, account Account) {
	if mem, ok := s.(*memoryStore); ok {
		mem.putAccount(account)
	}
}

// FailInsertMovement makes movement inserts fail with err when match returns
// true for the prospective movement. A nil match fails every insert.
func FailInsertMovement(s Store, err error, match func(Movement) bool) {
	if mem, ok := s.(*memoryStore); ok {
		mem.insertErr = func(m Movement) error {
			if match == nil || match(m) {
				return err
			}
			return nil
		}
	}
}

// FailUpdateBalance makes balance updates for accountID fail with err. An
// empty accountID fails every update.
func FailUpdateBalance(s Store, accountID string, err error) {
	if mem, ok := s.(*memoryStore); ok {
		mem.balanceErr = func(id string) error {
			if accountID == "" || id == accountID {
				return err
			}
			return nil
		}
	}
}

// FailDeleteMovement makes movement deletes fail with err, simulating a
// compensation step that cannot be applied.
func FailDeleteMovement(s Store, err error) {
	if mem, ok := s.(*memoryStore); ok {
		mem.deleteErr = func(string) error { return err }
	}
}

// MovementCount reports how many movement records the in-memory store holds.
func MovementCount(s Store) int {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.RLock()
		defer mem.mu.RUnlock()
		return len(mem.movements)
	}
	return 0
}
