package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no identity matches the given email or id.
	ErrNotFound = errors.New("identity not found")

	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository persists identities.
type Repository interface {
	Create(ctx context.Context, identity Identity) error
	FindByEmail(ctx context.Context, email string) (Identity, error)
	FindByID(ctx context.Context, id string) (Identity, error)
	List(ctx context.Context) ([]Identity, error)
	SetRole(ctx context.Context, id string, role Role) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed directory repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new identity.
func (r *PostgresRepository) Create(ctx context.Context, identity Identity) error {
	id, err := uuid.Parse(identity.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO identities (id, email, role, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)`, id, identity.Email, string(identity.Role), identity.PasswordHash, identity.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

// FindByEmail fetches an identity by its unique email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, role, password_hash, created_at
        FROM identities WHERE email = $1`, email)
	return scanIdentity(row)
}

// FindByID fetches an identity by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Identity, error) {
	identityID, err := uuid.Parse(id)
	if err != nil {
		return Identity{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, email, role, password_hash, created_at
        FROM identities WHERE id = $1`, identityID)
	return scanIdentity(row)
}

// List returns all identities ordered by registration time.
func (r *PostgresRepository) List(ctx context.Context) ([]Identity, error) {
	rows, err := r.db.Query(ctx, `SELECT id, email, role, password_hash, created_at
        FROM identities ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

// SetRole updates the role of an existing identity.
func (r *PostgresRepository) SetRole(ctx context.Context, id string, role Role) error {
	identityID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE identities SET role = $1 WHERE id = $2`, string(role), identityID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIdentity(row pgx.Row) (Identity, error) {
	var (
		id        uuid.UUID
		role      string
		createdAt time.Time
		identity  Identity
	)
	if err := row.Scan(&id, &identity.Email, &role, &identity.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, err
	}
	identity.ID = id.String()
	identity.Role = Role(role)
	identity.CreatedAt = createdAt.UTC()
	return identity, nil
}
