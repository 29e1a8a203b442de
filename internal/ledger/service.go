package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service exposes consumer account operations over a ledger store.
type Service struct {
	store        Store
	storeTimeout time.Duration
}

// NewService builds a ledger service. Store calls are bounded by storeTimeout.
func NewService(store Store, storeTimeout time.Duration) *Service {
	return &Service{store: store, storeTimeout: storeTimeout}
}

// CreateInput captures the data required to open a consumer account.
type CreateInput struct {
	Email   string
	Name    string
	Credits int64
}

// CreateAccount provisions a consumer account, starting at zero credits unless
// an initial balance is supplied.
func (s *Service) CreateAccount(ctx context.Context, input CreateInput) (Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return Account{}, errors.New("email is required")
	}
	if input.Credits < 0 {
		return Account{}, errors.New("credits must not be negative")
	}

	account := Account{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       strings.TrimSpace(input.Name),
		SMSCredits: input.Credits,
		CreatedAt:  time.Now().UTC(),
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// List returns all consumer accounts.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListAccounts(ctx)
}

// Credits returns the balance for one account.
func (s *Service) Credits(ctx context.Context, id string) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.GetCredits(ctx, id)
}

// SetCredits upserts the balance to an exact value.
func (s *Service) SetCredits(ctx context.Context, id string, value int64) error {
	if value < 0 {
		return errors.New("credits must not be negative")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.SetCredits(ctx, id, value)
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
