package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(id string, at time.Time) generic.Run {
	return generic.Run{
		ID:            id,
		Source:        generic.RunSourceScenario,
		Label:         "full-match",
		CreatedAt:     at,
		RowCount:      1,
		InvoiceCount:  1,
		PaymentCount:  1,
		RecordCount:   1,
		TotalInvoiced: "255.00",
		TotalPaid:     "255.00",
		TotalDiscount: "5.10",
		TotalFinal:    "249.90",
		ResultCSV:     "\"Note\"\n\"Full Match\"\n",
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	at := time.Date(2025, 3, 10, 9, 30, 0, 123456789, time.FixedZone("IST", 19800))

	require.NoError(t, s.SaveRun(ctx, testRun("run-1", at)))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, generic.RunSourceScenario, got.Source)
	assert.Equal(t, "full-match", got.Label)
	assert.True(t, got.CreatedAt.Equal(at))
	assert.Equal(t, "5.10", got.TotalDiscount)
	assert.Equal(t, "\"Note\"\n\"Full Match\"\n", got.ResultCSV)
}

func TestStore_GetMissing(t *testing.T) {
	_, err := newTestStore(t).GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, generic.ErrRunNotFound)
}

func TestStore_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	require.NoError(t, s.SaveRun(ctx, testRun("dup", now)))
	err := s.SaveRun(ctx, testRun("dup", now))
	assert.ErrorIs(t, err, generic.ErrInvalidRun)
}

func TestStore_InvalidRunRejected(t *testing.T) {
	err := newTestStore(t).SaveRun(context.Background(), generic.Run{ID: "x"})
	assert.ErrorIs(t, err, generic.ErrInvalidRun)
}

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Sub-second spacing checks the fixed-width timestamp ordering.
	require.NoError(t, s.SaveRun(ctx, testRun("a", base)))
	require.NoError(t, s.SaveRun(ctx, testRun("b", base.Add(500*time.Millisecond))))
	require.NoError(t, s.SaveRun(ctx, testRun("c", base.Add(2*time.Second))))

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "a", all[2].ID)

	two, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestStore_DeleteRunsBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRun(ctx, testRun("old", base)))
	require.NoError(t, s.SaveRun(ctx, testRun("edge", base.Add(time.Hour))))
	require.NoError(t, s.SaveRun(ctx, testRun("new", base.Add(2*time.Hour))))

	n, err := s.DeleteRunsBefore(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(ctx, testRun("keep", time.Now())))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetRun(ctx, "keep")
	assert.NoError(t, err)
}
