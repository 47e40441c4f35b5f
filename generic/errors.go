/*
errors.go - Centralized error types for the settlement engine

PURPOSE:
  The calculation core never fails: malformed input degrades to defined
  output. Errors only exist at the boundaries (interchange decoding, run
  history, HTTP), and they are all declared here for discoverability.

ERROR CATEGORIES:
  1. Input errors - Interchange text that cannot be read at all
  2. Store errors - Run history lookups and writes

USAGE:
  if errors.Is(err, generic.ErrRunNotFound) {
      // 404
  }

SEE ALSO:
  - store.go: Uses these errors
  - worksheet/csv.go: Returns ErrEmptyInput
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyInput is returned when interchange text has no header line.
	ErrEmptyInput = errors.New("empty input: no header line")

	// ErrMalformedInput is returned when interchange text cannot be tokenized.
	ErrMalformedInput = errors.New("malformed input")

	// ErrRunNotFound is returned when a run ID is unknown to the store.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidRun is returned when a run is missing required fields.
	ErrInvalidRun = errors.New("invalid run")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// LineError locates an input error on a line of interchange text.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() []error {
	return []error{ErrMalformedInput, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrInvalidRun)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
