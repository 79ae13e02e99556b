// Package snapshot persists the claim collection wholesale. The in-memory
// store remains the source of truth; this is the durable copy handed over
// after each mutation and read back once at startup.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ccube-expense/ccube-expense/internal/expense"
)

// pg error codes checked below.
const (
	codeDuplicateTable = "42P07"
	codeUndefinedTable = "42P01"
)

// Store writes the claim set as a single jsonb row.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a snapshot store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the snapshot table when missing. A concurrent create
// race is tolerated.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errors.New("snapshot: store not initialised")
	}
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS expense_snapshots (
	id INT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	var pgErr *pgconn.PgError
	if err != nil && errors.As(err, &pgErr) && pgErr.Code == codeDuplicateTable {
		return nil
	}
	if err != nil {
		return fmt.Errorf("snapshot: ensure schema: %w", err)
	}
	return nil
}

// Save upserts the full claim set.
func (s *Store) Save(ctx context.Context, claims []expense.Expense) error {
	if s == nil || s.pool == nil {
		return errors.New("snapshot: store not initialised")
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO expense_snapshots (id, payload, updated_at)
VALUES (1, $1, NOW())
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`, payload)
	var pgErr *pgconn.PgError
	if err != nil && errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable {
		return fmt.Errorf("snapshot: table missing, run EnsureSchema first: %w", err)
	}
	if err != nil {
		return fmt.Errorf("snapshot: save: %w", err)
	}
	return nil
}

// Load returns the persisted claim set, or nil when no snapshot exists yet.
func (s *Store) Load(ctx context.Context) ([]expense.Expense, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("snapshot: store not initialised")
	}
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM expense_snapshots WHERE id = 1`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: load: %w", err)
	}
	var claims []expense.Expense
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return claims, nil
}
