/*
handlers.go - HTTP API handlers for the settlement engine

PURPOSE:
  Exposes the allocation engine via REST API. Handles HTTP request/response,
  JSON and CSV serialization, and delegates to the worksheet pipeline.
  Every successful calculation is recorded in run history.

ENDPOINTS:
  Calculation:
    POST   /api/calculate              JSON rows in, records + summary out
    POST   /api/calculate/csv          Interchange CSV in, settled CSV out

  Interchange:
    POST   /api/import                 CSV in, JSON rows out
    POST   /api/export                 JSON rows in, CSV out

  Run history:
    GET    /api/runs                   List recent runs (?limit=N)
    GET    /api/runs/{id}              Run details
    GET    /api/runs/{id}/export       Settled CSV of a run

  Scenarios:
    GET    /api/scenarios              List demo worksheets
    GET    /api/scenarios/{id}         Demo worksheet rows
    POST   /api/scenarios/{id}/run     Calculate a demo worksheet

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Run history (SQLite or memory)
  - Logger: Base logger; per-request loggers come from the context
  - MaxBodySize: Upper bound on request bodies

REQUEST FLOW:
  1. Parse HTTP request (JSON rows or CSV text)
  2. Calculate (worksheet.Calculate)
  3. Record the run
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON or CSV, empty CSV, bad query parameters
  - 404: Unknown run or scenario
  - 413: Request body over the configured limit
  - 500: Internal errors

  A run that fails to save is logged; the calculation is still returned,
  without a run_id.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo worksheets
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/logger"
	"github.com/warp/settlement-engine/worksheet"
	"go.uber.org/zap"
)

// DefaultMaxBodySize applies when a Handler has no explicit limit.
const DefaultMaxBodySize int64 = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       generic.RunStore
	Logger      *zap.Logger
	MaxBodySize int64

	now   func() time.Time
	newID func() string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store generic.RunStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:       store,
		Logger:      log,
		MaxBodySize: DefaultMaxBodySize,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   h.now().UTC().Format(time.RFC3339),
	})
}

// =============================================================================
// CALCULATION ENDPOINTS
// =============================================================================

// Calculate runs the engine over JSON rows.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req RowsRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeFailure(w, "Invalid request body", err)
		return
	}

	res := worksheet.Calculate(req.Rows)
	runID := h.recordCalculation(r.Context(), generic.RunSourceAPI, req.Label, res)

	writeJSON(w, http.StatusOK, CalculateResponse{
		RunID:   runID,
		Records: toRecordDTOs(res.Records),
		Summary: toSummaryDTO(res),
	})
}

// CalculateCSV runs the engine over an interchange CSV body and returns the
// settled CSV. The run ID is returned in the X-Run-ID header.
// POST /api/calculate/csv
func (h *Handler) CalculateCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := worksheet.Import(h.limitBody(w, r))
	if err != nil {
		writeFailure(w, "Failed to read CSV", err)
		return
	}

	res := worksheet.Calculate(rows)
	text, err := worksheet.ExportString(res.Rows())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render CSV", err)
		return
	}

	runID := h.recordRun(r.Context(), generic.RunSourceCSV, r.URL.Query().Get("label"), res, text)
	if runID != "" {
		w.Header().Set("X-Run-ID", runID)
	}
	writeCSV(w, "settlement.csv", text)
}

// =============================================================================
// INTERCHANGE ENDPOINTS
// =============================================================================

// Import parses an interchange CSV body into rows.
// POST /api/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	rows, err := worksheet.Import(h.limitBody(w, r))
	if err != nil {
		writeFailure(w, "Failed to read CSV", err)
		return
	}
	if rows == nil {
		rows = []worksheet.Row{}
	}
	writeJSON(w, http.StatusOK, ImportResponse{Rows: rows, Count: len(rows)})
}

// Export renders JSON rows as interchange CSV.
// POST /api/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req RowsRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeFailure(w, "Invalid request body", err)
		return
	}

	text, err := worksheet.ExportString(req.Rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render CSV", err)
		return
	}
	writeCSV(w, "worksheet.csv", text)
}

// =============================================================================
// RUN HISTORY ENDPOINTS
// =============================================================================

// ListRuns returns recent runs, newest first.
// GET /api/runs?limit=N
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", fmt.Errorf("limit must be a non-negative integer, got %q", s))
			return
		}
		limit = n
	}

	runs, err := h.Store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(runs, func(run generic.Run, _ int) RunDTO { return toRunDTO(run) }))
}

// GetRun returns a single run.
// GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "Failed to get run", err)
		return
	}
	writeJSON(w, http.StatusOK, RunDetailDTO{RunDTO: toRunDTO(run), ResultCSV: run.ResultCSV})
}

// ExportRun returns the settled CSV recorded with a run.
// GET /api/runs/{id}/export
func (h *Handler) ExportRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "Failed to get run", err)
		return
	}
	writeCSV(w, "run-"+run.ID+".csv", run.ResultCSV)
}

// =============================================================================
// RUN RECORDING
// =============================================================================

// recordCalculation renders res as CSV and records it. See recordRun.
func (h *Handler) recordCalculation(ctx context.Context, source generic.RunSource, label string, res worksheet.Result) string {
	if h.Store == nil {
		return ""
	}
	text, err := worksheet.ExportString(res.Rows())
	if err != nil {
		logger.FromContext(ctx).Error("render run result", zap.Error(err))
		return ""
	}
	return h.recordRun(ctx, source, label, res, text)
}

// recordRun saves a run for res with its rendered CSV and returns its ID,
// or "" when nothing was saved.
func (h *Handler) recordRun(ctx context.Context, source generic.RunSource, label string, res worksheet.Result, text string) string {
	if h.Store == nil {
		return ""
	}
	log := logger.FromContext(ctx)

	run := generic.Run{
		ID:            h.newID(),
		Source:        source,
		Label:         label,
		CreatedAt:     h.now(),
		RowCount:      res.InputRows,
		InvoiceCount:  res.InvoiceCount,
		PaymentCount:  res.PaymentCount,
		RecordCount:   len(res.Records),
		TotalInvoiced: generic.FormatAmount(res.Summary.TotalInvoiced),
		TotalPaid:     generic.FormatAmount(res.Summary.TotalPaid),
		TotalDiscount: generic.FormatAmount(res.Summary.TotalDiscount),
		TotalFinal:    generic.FormatAmount(res.Summary.TotalFinal),
		ResultCSV:     text,
	}
	if err := h.Store.SaveRun(ctx, run); err != nil {
		log.Error("save run", zap.String("run_id", run.ID), zap.Error(err))
		return ""
	}

	log.Info("run recorded",
		zap.String("run_id", run.ID),
		zap.String("source", string(source)),
		zap.Int("rows", run.RowCount),
		zap.Int("records", run.RecordCount),
	)
	return run.ID
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) limitBody(w http.ResponseWriter, r *http.Request) io.Reader {
	limit := h.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	return http.MaxBytesReader(w, r.Body, limit)
}

// decodeJSON reads one JSON value from the body. Syntax and type errors are
// reported as malformed input.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(h.limitBody(w, r)).Decode(v)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", generic.ErrMalformedInput, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeCSV(w http.ResponseWriter, filename, text string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeFailure picks the status from the error.
func writeFailure(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case generic.IsNotFound(err), errors.Is(err, errScenarioNotFound):
		return http.StatusNotFound
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
