// Command settle allocates payments to invoices in an interchange CSV file
// and writes the settled worksheet as CSV.
//
//	settle -in rows.csv [-out settled.csv] [-summary summary.json] [-db runs.db] [-log-level debug]
//
// The JSON summary goes to stderr unless -summary names a file. With -db the
// run is also recorded in that SQLite run history.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/logger"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/store/sqlite"
	"github.com/warp/settlement-engine/worksheet"
	"go.uber.org/zap"
)

const (
	exitOK    = 0
	exitIO    = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	in       string
	out      string
	summary  string
	db       string
	logLevel string
}

// summaryJSON is the shape written by -summary.
type summaryJSON struct {
	RunID         string         `json:"run_id,omitempty"`
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

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("settle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.in, "in", "", "Interchange CSV file path (- for stdin)")
	fs.StringVar(&opts.out, "out", "", "Settled CSV output path (default stdout)")
	fs.StringVar(&opts.summary, "summary", "", "Optional path to write JSON summary (default stderr)")
	fs.StringVar(&opts.db, "db", "", "Optional SQLite run history to record the run in")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if opts.in == "" || !logger.ValidLevel(opts.logLevel) {
		fs.Usage()
		return exitUsage
	}

	log, err := logger.New(&logger.Config{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitIO
	}
	defer log.Sync()

	if err := settle(context.Background(), opts, stdin, stdout, stderr, log); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitIO
	}
	return exitOK
}

func settle(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer, log *zap.Logger) error {
	rows, err := readRows(opts.in, stdin)
	if err != nil {
		return err
	}
	log.Debug("rows imported", zap.String("in", opts.in), zap.Int("rows", len(rows)))

	res := worksheet.Calculate(rows)
	text, err := worksheet.ExportString(res.Rows())
	if err != nil {
		return fmt.Errorf("render csv: %w", err)
	}

	if err := writeText(opts.out, stdout, text); err != nil {
		return err
	}

	sum := toSummaryJSON(res)
	if opts.db != "" {
		id, err := recordRun(ctx, opts.db, res, text)
		if err != nil {
			return err
		}
		sum.RunID = id
		log.Info("run recorded", zap.String("run_id", id), zap.String("db", opts.db))
	}

	return writeSummary(opts.summary, stderr, sum)
}

func readRows(path string, stdin io.Reader) ([]worksheet.Row, error) {
	if path == "-" {
		return worksheet.Import(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := worksheet.Import(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func writeText(path string, stdout io.Writer, text string) error {
	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

func writeSummary(path string, stderr io.Writer, sum summaryJSON) error {
	w := stderr
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

func recordRun(ctx context.Context, dbPath string, res worksheet.Result, text string) (string, error) {
	st, err := sqlite.New(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run := generic.Run{
		ID:            uuid.NewString(),
		Source:        generic.RunSourceCLI,
		CreatedAt:     time.Now(),
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
	if err := st.SaveRun(ctx, run); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.ID, nil
}

func toSummaryJSON(res worksheet.Result) summaryJSON {
	byCase := make(map[string]int)
	for _, label := range settlement.AllCaseLabels() {
		byCase[label.String()] = res.Summary.ByCase[label]
	}
	return summaryJSON{
		InputRows:     res.InputRows,
		Invoices:      res.InvoiceCount,
		Payments:      res.PaymentCount,
		Records:       res.Summary.Records,
		Splits:        res.Summary.Splits,
		TotalInvoiced: generic.FormatAmount(res.Summary.TotalInvoiced),
		TotalPaid:     generic.FormatAmount(res.Summary.TotalPaid),
		TotalDiscount: generic.FormatAmount(res.Summary.TotalDiscount),
		TotalFinal:    generic.FormatAmount(res.Summary.TotalFinal),
		ByCase:        byCase,
	}
}
