package worksheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/warp/settlement-engine/generic"
)

// =============================================================================
// COLUMNS
// =============================================================================

type column struct {
	header string
	field  func(*Row) *string
}

var importColumns = []column{
	{"Product Code", func(r *Row) *string { return &r.ProductCode }},
	{"Description", func(r *Row) *string { return &r.Description }},
	{"Invoice Number", func(r *Row) *string { return &r.InvoiceNumber }},
	{"Invoice Date", func(r *Row) *string { return &r.InvoiceDate }},
	{"Due Date", func(r *Row) *string { return &r.DueDate }},
	{"Quantity", func(r *Row) *string { return &r.Quantity }},
	{"Unit Price", func(r *Row) *string { return &r.UnitPrice }},
	{"Invoice Amount", func(r *Row) *string { return &r.InvoiceAmount }},
	{"Payment Doc No", func(r *Row) *string { return &r.PaymentDocNo }},
	{"Payment Date", func(r *Row) *string { return &r.PaymentDate }},
	{"Payment Amount", func(r *Row) *string { return &r.PaymentAmount }},
	{"Discount Rate", func(r *Row) *string { return &r.DiscountRate }},
}

var derivedColumns = []column{
	{"Days Difference", func(r *Row) *string { return &r.DaysDifference }},
	{"Proportionate Quantity", func(r *Row) *string { return &r.ProportionateQuantity }},
	{"Discount Amount", func(r *Row) *string { return &r.DiscountAmount }},
	{"Final Payment", func(r *Row) *string { return &r.FinalPayment }},
	{"Note", func(r *Row) *string { return &r.Note }},
}

var exportColumns = append(append([]column{}, importColumns...), derivedColumns...)

// headerAliases maps normalized header text to an import column. Besides
// the canonical names it accepts a few spellings common in exported ledgers.
var headerAliases = map[string]string{
	"product":           "Product Code",
	"itemcode":          "Product Code",
	"desc":              "Description",
	"invoiceno":         "Invoice Number",
	"invoice#":          "Invoice Number",
	"qty":               "Quantity",
	"price":             "Unit Price",
	"paymentdocumentno": "Payment Doc No",
	"paymentdocnumber":  "Payment Doc No",
	"paymentref":        "Payment Doc No",
	"discount%":         "Discount Rate",
	"discountpercent":   "Discount Rate",
}

var headerDictionary = buildHeaderDictionary()

func buildHeaderDictionary() map[string]column {
	byHeader := make(map[string]column, len(importColumns))
	dict := make(map[string]column, len(importColumns)+len(headerAliases))
	for _, c := range importColumns {
		byHeader[c.header] = c
		dict[normalizeHeader(c.header)] = c
	}
	for alias, header := range headerAliases {
		dict[alias] = byHeader[header]
	}
	return dict
}

// normalizeHeader lowercases and drops all whitespace.
func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, h)
}

// ImportHeaders returns the import column names in order.
func ImportHeaders() []string { return headers(importColumns) }

// ExportHeaders returns the export column names in order.
func ExportHeaders() []string { return headers(exportColumns) }

func headers(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header
	}
	return out
}

// =============================================================================
// IMPORT
// =============================================================================

// Import reads interchange text into rows. Header names are matched
// case-insensitively with whitespace removed; unknown headers are ignored.
// Rows shorter than the header leave their trailing fields empty. Due Date
// and Payment Date are normalized to DD-MM-YYYY. Derived columns are not read.
func Import(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, generic.ErrEmptyInput
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}

	// Column index -> field accessor; nil for unrecognized headers.
	mapping := make([]*column, len(head))
	for i, h := range head {
		if c, ok := headerDictionary[normalizeHeader(h)]; ok {
			c := c
			mapping[i] = &c
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSVError(err)
		}

		var row Row
		for i, c := range mapping {
			if c == nil || i >= len(rec) {
				continue
			}
			*c.field(&row) = strings.TrimSpace(rec[i])
		}
		if row.IsBlank() {
			continue
		}
		row.DueDate = generic.FormatDate(row.DueDate)
		row.PaymentDate = generic.FormatDate(row.PaymentDate)
		rows = append(rows, row)
	}
	return rows, nil
}

func wrapCSVError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &generic.LineError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("read interchange text: %w", err)
}

// =============================================================================
// EXPORT
// =============================================================================

// Export writes the header and rows with every field double-quoted.
func Export(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, ExportHeaders())
	for i := range rows {
		fields := make([]string, len(exportColumns))
		for j, c := range exportColumns {
			fields[j] = *c.field(&rows[i])
		}
		writeLine(bw, fields)
	}
	return bw.Flush()
}

// ExportString is Export into a string.
func ExportString(rows []Row) (string, error) {
	var sb strings.Builder
	if err := Export(&sb, rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// writeLine quotes every field. encoding/csv only quotes when needed.
func writeLine(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}
