package identity

import (
	"context"
	"sync"

	"zirrmi/pkg/platform/sentinel"
)

// InMemoryAccountStore keys accounts by normalized email.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[string]Account)}
}

// Create stores a new account, failing with sentinel.ErrConflict when the
// email is taken.
func (s *InMemoryAccountStore) Create(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Email]; ok {
		return sentinel.ErrConflict
	}
	s.accounts[account.Email] = account
	return nil
}

func (s *InMemoryAccountStore) FindByEmail(_ context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[email]; ok {
		return account, nil
	}
	return Account{}, sentinel.ErrNotFound
}
