/*
store.go - Persistence interface for run history

PURPOSE:
  Every completed calculation pass can be recorded as a Run: who asked
  (source), what went in (counts) and what came out (totals plus the
  exported result). The calculation never reads runs back; history is an
  audit trail, not worksheet storage.

KEY INTERFACES:
  RunStore: Save, fetch, list and prune runs

APPEND-ONLY CONTRACT:
  Runs are never updated. SaveRun with an existing ID is rejected.
  The only removal path is DeleteRunsBefore, used by retention.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing and dev

SEE ALSO:
  - api/scheduler.go: Retention pruning
  - api/handlers.go: Records runs after each calculation
*/
package generic

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// RUN - One recorded calculation pass
// =============================================================================

type RunSource string

const (
	RunSourceAPI      RunSource = "api"
	RunSourceCSV      RunSource = "csv"
	RunSourceCLI      RunSource = "cli"
	RunSourceScenario RunSource = "scenario"
)

type Run struct {
	ID        string
	Source    RunSource
	Label     string // free-form, e.g. the scenario ID
	CreatedAt time.Time

	RowCount     int
	InvoiceCount int
	PaymentCount int
	RecordCount  int

	// Totals are kept as fixed two-decimal strings so stores need no decimal column type.
	TotalInvoiced string
	TotalPaid     string
	TotalDiscount string
	TotalFinal    string

	ResultCSV string
}

// Validate checks the fields every store requires.
func (r Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRun)
	}
	if r.Source == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidRun)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing created_at", ErrInvalidRun)
	}
	return nil
}

// =============================================================================
// RUN STORE
// =============================================================================

// RunStore persists run history.
type RunStore interface {
	// SaveRun records a run. Returns ErrInvalidRun for duplicates or missing fields.
	SaveRun(ctx context.Context, run Run) error

	// GetRun returns the run or ErrRunNotFound.
	GetRun(ctx context.Context, id string) (Run, error)

	// ListRuns returns the newest runs first. limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// DeleteRunsBefore removes runs created strictly before cutoff.
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error)
}
