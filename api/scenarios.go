/*
scenarios.go - Demo worksheets for testing and demonstrations

PURPOSE:

	Provides pre-built worksheets that exercise each allocation case.
	Each scenario is a plain row set, the same shape a client would post
	to /api/calculate, so running one goes through the full pipeline and
	is recorded in run history like any other calculation.

AVAILABLE SCENARIOS:

	full-match:          One invoice, one payment of equal amount, paid early
	excess-payment:      Payment larger than the only invoice
	unadjusted-invoice:  Invoice larger than the only payment
	multi-invoice:       Two invoices drawing on one payment
	split-payments:      One invoice settled by several payments, then an exact one
	late-payments:       Payments after the due date earn no discount
	mixed-ledger:        Realistic ledger with descriptive columns and an excess

USAGE VIA API:

	GET  /api/scenarios/multi-invoice
	POST /api/scenarios/multi-invoice/run

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and rows
 2. Add an expectation in scenarios_test.go

SEE ALSO:
  - handlers.go: Calculation handlers
  - worksheet/calculate.go: The pipeline a scenario runs through
*/
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/worksheet"
)

var errScenarioNotFound = errors.New("scenario not found")

// Scenario is a named demo worksheet.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Rows        []worksheet.Row
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []Scenario{
	{
		ID:          "full-match",
		Name:        "Full Match",
		Description: "Invoice of 255.00 paid in full ten days early at a 2% discount rate",
		Rows: []worksheet.Row{
			{ProductCode: "SKU-100", Description: "Copper wire", InvoiceNumber: "INV-1001",
				InvoiceDate: "01-03-2025", DueDate: "20-03-2025", Quantity: "51", UnitPrice: "5",
				InvoiceAmount: "255.00", PaymentDocNo: "RCPT-501", PaymentDate: "10-03-2025",
				PaymentAmount: "255.00", DiscountRate: "2"},
		},
	},
	{
		ID:          "excess-payment",
		Name:        "Excess Payment",
		Description: "Payment of 300.00 against a single invoice of 100.00 leaves 200.00 unapplied",
		Rows: []worksheet.Row{
			{InvoiceNumber: "INV-2001", DueDate: "30-04-2025", UnitPrice: "10", InvoiceAmount: "100.00",
				PaymentDocNo: "RCPT-601", PaymentDate: "15-04-2025", PaymentAmount: "300.00", DiscountRate: "1.5"},
		},
	},
	{
		ID:          "unadjusted-invoice",
		Name:        "Unadjusted Invoice",
		Description: "Invoice of 300.00 with a single payment of 100.00 leaves 200.00 outstanding",
		Rows: []worksheet.Row{
			{InvoiceNumber: "INV-3001", DueDate: "31-05-2025", UnitPrice: "25", InvoiceAmount: "300.00",
				PaymentDocNo: "RCPT-701", PaymentDate: "20-05-2025", PaymentAmount: "100.00", DiscountRate: "2"},
		},
	},
	{
		ID:          "multi-invoice",
		Name:        "Multiple Invoices",
		Description: "Two invoices of 100.00 drawing on one payment of 150.00",
		Rows: []worksheet.Row{
			{InvoiceNumber: "INV-4001", DueDate: "15-06-2025", InvoiceAmount: "100.00",
				PaymentDocNo: "RCPT-801", PaymentDate: "01-06-2025", PaymentAmount: "150.00", DiscountRate: "1"},
			{InvoiceNumber: "INV-4002", DueDate: "15-06-2025", InvoiceAmount: "100.00", DiscountRate: "1"},
		},
	},
	{
		ID:          "split-payments",
		Name:        "Split Payments",
		Description: "Invoice of 500.00 settled by three instalments, the last one late, then a second invoice paid exactly",
		Rows: []worksheet.Row{
			{InvoiceNumber: "INV-5001", DueDate: "31-07-2025", Quantity: "20", UnitPrice: "25",
				InvoiceAmount: "500.00", PaymentDocNo: "RCPT-901", PaymentDate: "05-07-2025",
				PaymentAmount: "200.00", DiscountRate: "3"},
			{PaymentDocNo: "RCPT-902", PaymentDate: "20-07-2025", PaymentAmount: "200.00"},
			{PaymentDocNo: "RCPT-903", PaymentDate: "10-08-2025", PaymentAmount: "100.00"},
			{InvoiceNumber: "INV-5002", DueDate: "31-07-2025", InvoiceAmount: "50.00",
				PaymentDocNo: "RCPT-904", PaymentDate: "25-07-2025", PaymentAmount: "50.00", DiscountRate: "3"},
		},
	},
	{
		ID:          "late-payments",
		Name:        "Late Payments",
		Description: "Payments on or after the due date carry no discount",
		Rows: []worksheet.Row{
			{InvoiceNumber: "INV-6001", DueDate: "10-09-2025", InvoiceAmount: "120.00",
				PaymentDocNo: "RCPT-1001", PaymentDate: "10-09-2025", PaymentAmount: "120.00", DiscountRate: "5"},
			{InvoiceNumber: "INV-6002", DueDate: "10-09-2025", InvoiceAmount: "80.00",
				PaymentDocNo: "RCPT-1002", PaymentDate: "25-09-2025", PaymentAmount: "80.00", DiscountRate: "5"},
		},
	},
	{
		ID:          "mixed-ledger",
		Name:        "Mixed Ledger",
		Description: "Three invoices and three receipts with descriptive columns; the surplus after the last invoice is reported as excess",
		Rows: []worksheet.Row{
			{ProductCode: "BLT-8", Description: "Hex bolts M8", InvoiceNumber: "INV-7001",
				InvoiceDate: "01-10-2025", DueDate: "31-10-2025", Quantity: "1000", UnitPrice: "0.12",
				InvoiceAmount: "120.00", PaymentDocNo: "RCPT-1101", PaymentDate: "12-10-2025",
				PaymentAmount: "100.00", DiscountRate: "2"},
			{ProductCode: "NUT-8", Description: "Hex nuts M8", InvoiceNumber: "INV-7002",
				InvoiceDate: "02-10-2025", DueDate: "01-11-2025", Quantity: "1000", UnitPrice: "0.08",
				InvoiceAmount: "80.00", PaymentDocNo: "RCPT-1102", PaymentDate: "20-10-2025",
				PaymentAmount: "250.00", DiscountRate: "2"},
			{ProductCode: "WSH-8", Description: "Washers M8", InvoiceNumber: "INV-7003",
				InvoiceDate: "05-10-2025", DueDate: "04-11-2025", Quantity: "2000", UnitPrice: "0.05",
				InvoiceAmount: "100.00", DiscountRate: "2"},
			{PaymentDocNo: "RCPT-1103", PaymentDate: "15-11-2025", PaymentAmount: "25.00"},
		},
	},
}

func findScenario(id string) (Scenario, bool) {
	return lo.Find(scenarios, func(s Scenario) bool { return s.ID == id })
}

func toScenarioDTO(s Scenario) ScenarioDTO {
	return ScenarioDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		RowCount:    len(s.Rows),
	}
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ListScenarios returns available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, lo.Map(scenarios, func(s Scenario, _ int) ScenarioDTO { return toScenarioDTO(s) }))
}

// GetScenario returns a scenario with its rows.
// GET /api/scenarios/{id}
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := findScenario(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, "Unknown scenario", errScenarioNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ScenarioDetailDTO{ScenarioDTO: toScenarioDTO(s), Rows: s.Rows})
}

// RunScenario calculates a scenario's rows and records the run.
// POST /api/scenarios/{id}/run
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := findScenario(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, "Unknown scenario", errScenarioNotFound)
		return
	}

	res := worksheet.Calculate(s.Rows)
	runID := h.recordCalculation(r.Context(), generic.RunSourceScenario, s.ID, res)

	writeJSON(w, http.StatusOK, CalculateResponse{
		RunID:   runID,
		Records: toRecordDTOs(res.Records),
		Summary: toSummaryDTO(res),
	})
}
