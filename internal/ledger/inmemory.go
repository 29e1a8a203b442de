package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

type inMemoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

// NewInMemory creates a concurrency-safe in-memory ledger store for
// development and unit tests.
func NewInMemory() Store {
	return &inMemoryStore{accounts: make(map[string]Account)}
}

func (s *inMemoryStore) CreateAccount(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return ErrDuplicateAccount
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *inMemoryStore) ListAccounts(_ context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *inMemoryStore) GetCredits(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return 0, ErrNotFound
	}
	return account.SMSCredits, nil
}

func (s *inMemoryStore) SetCredits(_ context.Context, id string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		account = Account{ID: id, CreatedAt: time.Now().UTC()}
	}
	account.SMSCredits = value
	s.accounts[id] = account
	return nil
}

func (s *inMemoryStore) GrantCredits(_ context.Context, id string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return 0, ErrNotFound
	}
	account.SMSCredits += delta
	s.accounts[id] = account
	return account.SMSCredits, nil
}

func (s *inMemoryStore) DebitCredit(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return 0, ErrNotFound
	}
	if account.SMSCredits < 1 {
		return 0, ErrInsufficientCredits
	}
	account.SMSCredits--
	s.accounts[id] = account
	return account.SMSCredits, nil
}
