package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no account matches the given id.
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientCredits occurs when a debit is attempted against an
	// exhausted balance.
	ErrInsufficientCredits = errors.New("insufficient sms credits")

	// ErrDuplicateAccount indicates the account id or email is already in use.
	ErrDuplicateAccount = errors.New("account already exists")
)

// Account is a consumer account holding an SMS credit balance.
type Account struct {
	ID         string
	Email      string
	Name       string
	SMSCredits int64
	CreatedAt  time.Time
}

// Store defines the contract implemented by ledger backends.
//
// DebitCredit must be atomic at the store layer: concurrent debits against a
// balance of one may let through exactly one caller.
type Store interface {
	CreateAccount(ctx context.Context, account Account) error
	ListAccounts(ctx context.Context) ([]Account, error)
	GetCredits(ctx context.Context, id string) (int64, error)
	// SetCredits upserts the balance to an exact value, creating the account
	// row when absent.
	SetCredits(ctx context.Context, id string, value int64) error
	// GrantCredits atomically adds delta to the balance and returns the result.
	GrantCredits(ctx context.Context, id string, delta int64) (int64, error)
	// DebitCredit atomically deducts one credit if the balance allows it and
	// returns the remaining balance.
	DebitCredit(ctx context.Context, id string) (int64, error)
}
