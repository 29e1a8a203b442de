package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists consumer accounts in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateAccount inserts a consumer account record.
func (s *PostgresStore) CreateAccount(ctx context.Context, account Account) error {
	accountID, err := uuid.Parse(account.ID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO consumer_accounts (id, email, name, sms_credits, created_at)
        VALUES ($1, $2, $3, $4, $5)`, accountID, account.Email, account.Name, account.SMSCredits, account.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateAccount
	}
	return err
}

// ListAccounts returns all consumer accounts with their balances.
func (s *PostgresStore) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.Query(ctx, `SELECT id, email, name, sms_credits, created_at
        FROM consumer_accounts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var (
			id        uuid.UUID
			createdAt time.Time
			account   Account
		)
		if err := rows.Scan(&id, &account.Email, &account.Name, &account.SMSCredits, &createdAt); err != nil {
			return nil, err
		}
		account.ID = id.String()
		account.CreatedAt = createdAt.UTC()
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// GetCredits returns the balance for one account.
func (s *PostgresStore) GetCredits(ctx context.Context, id string) (int64, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return 0, ErrNotFound
	}
	var balance int64
	if err := s.db.QueryRow(ctx, `SELECT sms_credits FROM consumer_accounts WHERE id = $1`, accountID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

// SetCredits upserts the balance to an exact value, inserting a bare account
// row when none exists.
func (s *PostgresStore) SetCredits(ctx context.Context, id string, value int64) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.db.Exec(ctx, `INSERT INTO consumer_accounts (id, email, name, sms_credits, created_at)
        VALUES ($1, '', '', $2, $3)
        ON CONFLICT (id) DO UPDATE SET sms_credits = EXCLUDED.sms_credits`, accountID, value, time.Now().UTC())
	return err
}

// GrantCredits adds delta to the balance in a single statement.
func (s *PostgresStore) GrantCredits(ctx context.Context, id string, delta int64) (int64, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return 0, ErrNotFound
	}
	var balance int64
	err = s.db.QueryRow(ctx, `UPDATE consumer_accounts SET sms_credits = sms_credits + $2
        WHERE id = $1 RETURNING sms_credits`, accountID, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return balance, err
}

// DebitCredit deducts one credit in a single conditional update so two
// concurrent debits can never both pass a stale balance check.
func (s *PostgresStore) DebitCredit(ctx context.Context, id string) (int64, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return 0, ErrNotFound
	}
	var balance int64
	err = s.db.QueryRow(ctx, `UPDATE consumer_accounts SET sms_credits = sms_credits - 1
        WHERE id = $1 AND sms_credits >= 1 RETURNING sms_credits`, accountID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// No row updated: either the account is unknown or the balance is exhausted.
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM consumer_accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}
	return 0, ErrInsufficientCredits
}
