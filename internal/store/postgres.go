package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath/assessflow/internal/contracts"
)

// Postgres persists logical tables as one row each: (name, columns, rows)
// with JSONB payloads. Replace is transactional, so a reader sees either
// the old snapshot or the new one, never a partial write.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed table store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the backing table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS frame_tables (
			name       TEXT PRIMARY KEY,
			columns    JSONB NOT NULL,
			rows       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Get retrieves the named table.
func (s *Postgres) Get(ctx context.Context, name string) (*contracts.Table, error) {
	query := `SELECT columns, rows FROM frame_tables WHERE name = $1`

	var columnsJSON, rowsJSON []byte
	err := s.pool.QueryRow(ctx, query, name).Scan(&columnsJSON, &rowsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query table %q: %w", name, err)
	}

	t := &contracts.Table{Name: name}
	if err := json.Unmarshal(columnsJSON, &t.Columns); err != nil {
		return nil, fmt.Errorf("decode columns of %q: %w", name, err)
	}
	if err := json.Unmarshal(rowsJSON, &t.Rows); err != nil {
		return nil, fmt.Errorf("decode rows of %q: %w", name, err)
	}
	return t, nil
}

// Replace upserts the table in a single transaction.
func (s *Postgres) Replace(ctx context.Context, table *contracts.Table) error {
	columnsJSON, err := json.Marshal(table.Columns)
	if err != nil {
		return fmt.Errorf("encode columns of %q: %w", table.Name, err)
	}
	rows := table.Rows
	if rows == nil {
		rows = [][]string{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode rows of %q: %w", table.Name, err)
	}

	query := `
		INSERT INTO frame_tables (name, columns, rows, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET columns = EXCLUDED.columns, rows = EXCLUDED.rows, updated_at = now()
	`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace of %q: %w", table.Name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, query, table.Name, columnsJSON, rowsJSON); err != nil {
		return fmt.Errorf("replace table %q: %w", table.Name, err)
	}
	return tx.Commit(ctx)
}
