package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/generic/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func seedRun(t *testing.T, s generic.RunStore, id string, at time.Time) {
	t.Helper()
	require.NoError(t, s.SaveRun(context.Background(), generic.Run{
		ID: id, Source: generic.RunSourceCLI, CreatedAt: at,
		TotalInvoiced: "0.00", TotalPaid: "0.00", TotalDiscount: "0.00", TotalFinal: "0.00",
	}))
}

func TestRetentionScheduler_Prune(t *testing.T) {
	// GIVEN: runs 40, 10 and 1 days old with a 30 day retention
	mem := store.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedRun(t, mem, "old", now.AddDate(0, 0, -40))
	seedRun(t, mem, "recent", now.AddDate(0, 0, -10))
	seedRun(t, mem, "fresh", now.AddDate(0, 0, -1))

	core, logs := observer.New(zapcore.InfoLevel)
	rs := NewRetentionScheduler(mem, zap.New(core))
	rs.now = func() time.Time { return now }

	// WHEN: pruning
	n := rs.Prune(context.Background())

	// THEN: only the old run is gone
	assert.Equal(t, 1, n)
	runs, err := mem.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, 1, logs.FilterMessage("pruned runs").Len())

	// Nothing left to prune: no log line
	assert.Equal(t, 0, rs.Prune(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("pruned runs").Len())
}

func TestRetentionScheduler_StartPrunesImmediately(t *testing.T) {
	mem := store.NewMemory()
	seedRun(t, mem, "ancient", time.Now().AddDate(-1, 0, 0))

	rs := NewRetentionScheduler(mem, nil)
	rs.CheckInterval = time.Hour
	rs.Start()
	rs.Stop()

	_, err := mem.GetRun(context.Background(), "ancient")
	assert.ErrorIs(t, err, generic.ErrRunNotFound)

	// Stop is idempotent and the scheduler can be restarted.
	rs.Stop()
	rs.Start()
	rs.Stop()
}

func TestRetentionScheduler_Disabled(t *testing.T) {
	mem := store.NewMemory()
	seedRun(t, mem, "ancient", time.Now().AddDate(-1, 0, 0))

	rs := NewRetentionScheduler(mem, nil)
	rs.Enabled = false
	rs.Start()
	rs.Stop()

	_, err := mem.GetRun(context.Background(), "ancient")
	assert.NoError(t, err)
}
