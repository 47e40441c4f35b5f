/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Worksheet rows travel
  as text exactly as the worksheet holds them; amounts in summaries are
  fixed two-decimal strings so clients never see binary floats.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Calculation:
    RowsRequest, CalculateResponse, RecordDTO, SummaryDTO

  Interchange:
    ImportResponse

  Run history:
    RunDTO, RunDetailDTO

  Scenarios:
    ScenarioDTO, ScenarioDetailDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - worksheet/row.go: Row JSON shape
*/
package api

import (
	"time"

	"github.com/samber/lo"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/worksheet"
)

// =============================================================================
// CALCULATION
// =============================================================================

// RowsRequest carries worksheet rows. Used by calculate and export.
type RowsRequest struct {
	Rows  []worksheet.Row `json:"rows"`
	Label string          `json:"label,omitempty"`
}

// RecordDTO is one allocation record rendered as a worksheet row, plus the
// engine identifiers that tie it back to its input rows.
type RecordDTO struct {
	InvoiceID string `json:"invoice_id,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`
	Split     bool   `json:"split"`
	worksheet.Row
}

// SummaryDTO aggregates a calculation.
type SummaryDTO struct {
	InputRows     int            `json:"input_rows"`
	Invoices      int            `json:"invoices"`
	Payments      int            `json:"payments"`
	Records       int            `json:"records"`
	Splits        int            `json:"splits"`
	TotalInvoiced string         `json:"total_invoiced"`
	TotalPaid     string         `json:"total_paid"`
	TotalDiscount string         `json:"total_discount"`
	TotalFinal    string         `json:"total_final"`
	ByCase        map[string]int `json:"by_case"`
}

// CalculateResponse is returned by POST /api/calculate.
type CalculateResponse struct {
	RunID   string      `json:"run_id,omitempty"`
	Records []RecordDTO `json:"records"`
	Summary SummaryDTO  `json:"summary"`
}

// ImportResponse is returned by POST /api/import.
type ImportResponse struct {
	Rows  []worksheet.Row `json:"rows"`
	Count int             `json:"count"`
}

// =============================================================================
// RUN HISTORY
// =============================================================================

// RunDTO represents a recorded run in list responses.
type RunDTO struct {
	ID            string `json:"id"`
	Source        string `json:"source"`
	Label         string `json:"label,omitempty"`
	CreatedAt     string `json:"created_at"`
	RowCount      int    `json:"row_count"`
	InvoiceCount  int    `json:"invoice_count"`
	PaymentCount  int    `json:"payment_count"`
	RecordCount   int    `json:"record_count"`
	TotalInvoiced string `json:"total_invoiced"`
	TotalPaid     string `json:"total_paid"`
	TotalDiscount string `json:"total_discount"`
	TotalFinal    string `json:"total_final"`
}

// RunDetailDTO adds the exported result to RunDTO.
type RunDetailDTO struct {
	RunDTO
	ResultCSV string `json:"result_csv"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RowCount    int    `json:"row_count"`
}

// ScenarioDetailDTO includes the scenario's worksheet rows.
type ScenarioDetailDTO struct {
	ScenarioDTO
	Rows []worksheet.Row `json:"rows"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRecordDTOs(records []settlement.AllocationRecord) []RecordDTO {
	return lo.Map(records, func(rec settlement.AllocationRecord, _ int) RecordDTO {
		return RecordDTO{
			InvoiceID: rec.InvoiceID,
			PaymentID: rec.PaymentID,
			Split:     rec.Split,
			Row:       worksheet.FromRecord(rec),
		}
	})
}

func toSummaryDTO(res worksheet.Result) SummaryDTO {
	s := res.Summary
	byCase := make(map[string]int, len(settlement.AllCaseLabels()))
	for _, label := range settlement.AllCaseLabels() {
		byCase[label.String()] = s.ByCase[label]
	}
	return SummaryDTO{
		InputRows:     res.InputRows,
		Invoices:      res.InvoiceCount,
		Payments:      res.PaymentCount,
		Records:       s.Records,
		Splits:        s.Splits,
		TotalInvoiced: generic.FormatAmount(s.TotalInvoiced),
		TotalPaid:     generic.FormatAmount(s.TotalPaid),
		TotalDiscount: generic.FormatAmount(s.TotalDiscount),
		TotalFinal:    generic.FormatAmount(s.TotalFinal),
		ByCase:        byCase,
	}
}

func toRunDTO(run generic.Run) RunDTO {
	return RunDTO{
		ID:            run.ID,
		Source:        string(run.Source),
		Label:         run.Label,
		CreatedAt:     run.CreatedAt.Format(time.RFC3339),
		RowCount:      run.RowCount,
		InvoiceCount:  run.InvoiceCount,
		PaymentCount:  run.PaymentCount,
		RecordCount:   run.RecordCount,
		TotalInvoiced: run.TotalInvoiced,
		TotalPaid:     run.TotalPaid,
		TotalDiscount: run.TotalDiscount,
		TotalFinal:    run.TotalFinal,
	}
}
