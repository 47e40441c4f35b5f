// Package store provides RunStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/settlement-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	runs []generic.Run // ordered by CreatedAt ascending
	ids  map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		ids: make(map[string]bool),
	}
}

// SaveRun records a run. Duplicate IDs are rejected.
func (m *Memory) SaveRun(_ context.Context, run generic.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ids[run.ID] {
		return fmt.Errorf("%w: duplicate id %s", generic.ErrInvalidRun, run.ID)
	}

	// Binary search for insertion point keeps runs ordered by creation time.
	i := sort.Search(len(m.runs), func(i int) bool {
		return m.runs[i].CreatedAt.After(run.CreatedAt)
	})
	m.runs = append(m.runs, generic.Run{})
	copy(m.runs[i+1:], m.runs[i:])
	m.runs[i] = run
	m.ids[run.ID] = true
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (generic.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return generic.Run{}, generic.ErrRunNotFound
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]generic.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]generic.Run, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *Memory) DeleteRunsBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.runs[:0]
	deleted := 0
	for _, r := range m.runs {
		if r.CreatedAt.Before(cutoff) {
			delete(m.ids, r.ID)
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	clear(m.runs[len(kept):])
	m.runs = kept
	return deleted, nil
}

var _ generic.RunStore = (*Memory)(nil)
