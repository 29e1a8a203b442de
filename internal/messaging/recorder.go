package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one entry in the append-only sent-message audit log.
type Record struct {
	ID         string
	Recipient  string
	Body       string
	ProviderID string
	SentAt     time.Time
}

// Recorder persists the sent-message audit log.
type Recorder interface {
	Append(ctx context.Context, record Record) error
	List(ctx context.Context) ([]Record, error)
}

// PostgresRecorder stores message records in PostgreSQL.
type PostgresRecorder struct {
	db *pgxpool.Pool
}

// NewPostgresRecorder builds a Postgres-backed audit recorder.
func NewPostgresRecorder(db *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Append inserts one record.
func (r *PostgresRecorder) Append(ctx context.Context, record Record) error {
	recordID, err := uuid.Parse(record.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO message_records (id, recipient, body, provider_id, sent_at)
        VALUES ($1, $2, $3, $4, $5)`, recordID, record.Recipient, record.Body, record.ProviderID, record.SentAt.UTC())
	return err
}

// List returns all records, most recent first.
func (r *PostgresRecorder) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.Query(ctx, `SELECT id, recipient, body, provider_id, sent_at
        FROM message_records ORDER BY sent_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			id     uuid.UUID
			sentAt time.Time
			record Record
		)
		if err := rows.Scan(&id, &record.Recipient, &record.Body, &record.ProviderID, &sentAt); err != nil {
			return nil, err
		}
		record.ID = id.String()
		record.SentAt = sentAt.UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}

type memoryRecorder struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryRecorder builds an in-memory audit recorder for development and tests.
func NewMemoryRecorder() Recorder {
	return &memoryRecorder{}
}

func (r *memoryRecorder) Append(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *memoryRecorder) List(_ context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
