package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/worksheet"
)

func notesOf(res worksheet.Result) []string {
	out := make([]string, len(res.Records))
	for i, r := range res.Records {
		out[i] = r.Note.String()
	}
	return out
}

func TestScenarios_ExpectedCases(t *testing.T) {
	expected := map[string][]string{
		"full-match":         {"Full Match"},
		"excess-payment":     {"Adjusted", "Excess Payment"},
		"unadjusted-invoice": {"Partially Adjusted", "Unadjusted Invoice"},
		"multi-invoice":      {"Adjusted", "Partially Adjusted", "Unadjusted Invoice"},
		"split-payments":     {"Partially Adjusted", "Partially Adjusted", "Full Match", "Full Match"},
		"late-payments":      {"Full Match", "Full Match"},
		"mixed-ledger":       {"Partially Adjusted", "Adjusted", "Adjusted", "Adjusted", "Excess Payment"},
	}
	require.Len(t, scenarios, len(expected))

	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			res := worksheet.Calculate(s.Rows)
			assert.Equal(t, expected[s.ID], notesOf(res))
		})
	}
}

func TestScenarios_AccountingIdentity(t *testing.T) {
	// Every invoice that is reached is fully accounted for.
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			invoices, _ := worksheet.Split(s.Rows)
			res := worksheet.Calculate(s.Rows)
			totals := settlement.InvoiceTotals(res.Records)
			for _, inv := range invoices {
				got, ok := totals[inv.ID]
				require.True(t, ok, inv.ID)
				assert.True(t, generic.AmountsEqual(inv.Amount, got, generic.DisplayPlaces),
					"%s: want %s got %s", inv.ID, inv.Amount, got)
			}
		})
	}
}

func TestScenarios_FullMatchFigures(t *testing.T) {
	s, ok := findScenario("full-match")
	require.True(t, ok)

	rows := worksheet.CalculateRows(s.Rows)

	require.Len(t, rows, 1)
	assert.Equal(t, "10", rows[0].DaysDifference)
	assert.Equal(t, "5.10", rows[0].DiscountAmount)
	assert.Equal(t, "249.90", rows[0].FinalPayment)
}

func TestScenarioEndpoints(t *testing.T) {
	h, srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/scenarios", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	assert.Len(t, list, len(scenarios))

	rec = do(t, srv, http.MethodGet, "/api/scenarios/multi-invoice", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[ScenarioDetailDTO](t, rec)
	assert.Equal(t, 2, detail.RowCount)
	assert.Len(t, detail.Rows, 2)

	rec = do(t, srv, http.MethodPost, "/api/scenarios/multi-invoice/run", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CalculateResponse](t, rec)
	require.NotEmpty(t, resp.RunID)
	assert.Len(t, resp.Records, 3)

	run, err := h.Store.GetRun(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, generic.RunSourceScenario, run.Source)
	assert.Equal(t, "multi-invoice", run.Label)

	rec = do(t, srv, http.MethodGet, "/api/scenarios/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodPost, "/api/scenarios/nope/run", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
