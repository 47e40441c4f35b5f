/*
Package sqlite provides a SQLite-backed implementation of generic.RunStore.

PURPOSE:
  Keeps the history of calculation passes across restarts. The settlement
  engine itself is stateless; this store only records what was calculated,
  when and from where, along with the exported result.

INTERFACES IMPLEMENTED:
  generic.RunStore: Run history persistence

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the runs table
  - Duplicate IDs are rejected by the primary key
  - DELETE only through DeleteRunsBefore (retention)

KEY TABLES:
  runs: One row per calculation pass

INDEXES:
  - idx_runs_created_at: Newest-first listing and retention pruning

TIMESTAMPS:
  created_at is stored as fixed-width UTC text so that lexical order is
  chronological order.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/runs.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definition
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/settlement-engine/generic"
)

// timeLayout is RFC3339 with fixed nanosecond width.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements generic.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		label TEXT,
		created_at TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		invoice_count INTEGER NOT NULL,
		payment_count INTEGER NOT NULL,
		record_count INTEGER NOT NULL,
		total_invoiced TEXT NOT NULL,
		total_paid TEXT NOT NULL,
		total_discount TEXT NOT NULL,
		total_final TEXT NOT NULL,
		result_csv TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN STORE (generic.RunStore interface)
// =============================================================================

const runColumns = `id, source, label, created_at, row_count, invoice_count, payment_count,
	record_count, total_invoiced, total_paid, total_discount, total_final, result_csv`

// SaveRun records a run.
func (s *Store) SaveRun(ctx context.Context, run generic.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Source), nullString(run.Label), formatTime(run.CreatedAt),
		run.RowCount, run.InvoiceCount, run.PaymentCount, run.RecordCount,
		run.TotalInvoiced, run.TotalPaid, run.TotalDiscount, run.TotalFinal,
		run.ResultCSV,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: duplicate id %s", generic.ErrInvalidRun, run.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (generic.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Run{}, generic.ErrRunNotFound
	}
	return run, err
}

// ListRuns returns the newest runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]generic.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []generic.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRunsBefore removes runs created strictly before cutoff.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (generic.Run, error) {
	var (
		run       generic.Run
		source    string
		label     sql.NullString
		createdAt string
	)
	err := sc.Scan(
		&run.ID, &source, &label, &createdAt,
		&run.RowCount, &run.InvoiceCount, &run.PaymentCount, &run.RecordCount,
		&run.TotalInvoiced, &run.TotalPaid, &run.TotalDiscount, &run.TotalFinal,
		&run.ResultCSV,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Source = generic.RunSource(source)
	run.Label = label.String
	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return run, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	return run, nil
}

var _ generic.RunStore = (*Store)(nil)

// Helper functions

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		se.ExtendedCode == sqlite3.ErrConstraintUnique
}
