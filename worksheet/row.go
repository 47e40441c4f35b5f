/*
Package worksheet converts text-typed worksheet rows into engine records and back.

PURPOSE:
  Worksheet rows arrive as text (from a form, an HTTP body or a CSV file).
  This package is the boundary where that text is parsed defensively into
  decimal amounts before the engine sees it, and where engine output is
  rendered back into text rows for display and export.

ROW SHAPE:
  Import columns (in order):
    Product Code, Description, Invoice Number, Invoice Date, Due Date,
    Quantity, Unit Price, Invoice Amount, Payment Doc No, Payment Date,
    Payment Amount, Discount Rate
  Derived columns (export only):
    Days Difference, Proportionate Quantity, Discount Amount,
    Final Payment, Note

  A single row may carry an invoice, a payment, or both. Rows carrying
  neither a positive invoice amount nor a positive payment amount take no
  part in a calculation.

PARSING RULES:
  - Unparsable numbers become 0 (see generic.ParseAmount)
  - Dates stay text; the engine parses them when it needs a day count
  - Descriptive text passes through untouched

USAGE:
  rows, err := worksheet.Import(file)
  result := worksheet.Calculate(rows)
  worksheet.Export(os.Stdout, result.Rows())

SEE ALSO:
  - calculate.go: Split, Calculate
  - csv.go: Import/Export of the interchange format
  - settlement/engine.go: The allocation walk
*/
package worksheet

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// ROW - Text-typed worksheet row
// =============================================================================

// Row is one worksheet line. All values are text.
type Row struct {
	ProductCode   string `json:"product_code"`
	Description   string `json:"description"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	DueDate       string `json:"due_date"`
	Quantity      string `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	InvoiceAmount string `json:"invoice_amount"`
	PaymentDocNo  string `json:"payment_doc_no"`
	PaymentDate   string `json:"payment_date"`
	PaymentAmount string `json:"payment_amount"`
	DiscountRate  string `json:"discount_rate"`

	// Derived by a calculation; ignored on input.
	DaysDifference        string `json:"days_difference,omitempty"`
	ProportionateQuantity string `json:"proportionate_quantity,omitempty"`
	DiscountAmount        string `json:"discount_amount,omitempty"`
	FinalPayment          string `json:"final_payment,omitempty"`
	Note                  string `json:"note,omitempty"`
}

// IsBlank reports whether every input column is empty.
func (r Row) IsBlank() bool {
	for _, c := range importColumns {
		if *c.field(&r) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// ROW -> RECORDS
// =============================================================================

func invoiceID(i int) string { return "INV-" + strconv.Itoa(i+1) }
func paymentID(i int) string { return "PAY-" + strconv.Itoa(i+1) }

// toInvoice parses the invoice half of row i. ok is false when the row
// carries no positive invoice amount.
func toInvoice(i int, r Row) (settlement.InvoiceRecord, bool) {
	amount := generic.ParseAmount(r.InvoiceAmount)
	if !amount.IsPositive() {
		return settlement.InvoiceRecord{}, false
	}
	return settlement.InvoiceRecord{
		ID:            invoiceID(i),
		Amount:        amount,
		DueDate:       r.DueDate,
		DiscountRate:  generic.ParseAmount(r.DiscountRate),
		ProductCode:   r.ProductCode,
		Description:   r.Description,
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   r.InvoiceDate,
		Quantity:      generic.ParseAmount(r.Quantity),
		UnitPrice:     generic.ParseAmount(r.UnitPrice),
	}, true
}

// toPayment parses the payment half of row i.
func toPayment(i int, r Row) (settlement.PaymentRecord, bool) {
	amount := generic.ParseAmount(r.PaymentAmount)
	if !amount.IsPositive() {
		return settlement.PaymentRecord{}, false
	}
	return settlement.PaymentRecord{
		ID:           paymentID(i),
		Amount:       amount,
		PaymentDate:  r.PaymentDate,
		PaymentDocNo: r.PaymentDocNo,
	}, true
}

// =============================================================================
// RECORD -> ROW
// =============================================================================

// FromRecord renders an allocation record as a worksheet row. Fields that
// belong to a missing side (no invoice for Excess Payment, no payment for
// Unadjusted Invoice) render empty, as does an absent discount.
func FromRecord(rec settlement.AllocationRecord) Row {
	row := Row{
		ProductCode:           rec.ProductCode,
		Description:           rec.Description,
		InvoiceNumber:         rec.InvoiceNumber,
		InvoiceDate:           rec.InvoiceDate,
		DueDate:               rec.DueDate,
		PaymentDocNo:          rec.PaymentDocNo,
		PaymentDate:           rec.PaymentDate,
		DaysDifference:        rec.DaysDifference.String(),
		ProportionateQuantity: generic.FormatAmount(rec.ProportionateQuantity),
		DiscountAmount:        generic.FormatOptionalAmount(rec.DiscountAmount),
		FinalPayment:          generic.FormatAmount(rec.FinalPayment),
		Note:                  rec.Note.String(),
	}
	if rec.InvoiceID != "" {
		row.Quantity = plain(rec.Quantity)
		row.UnitPrice = plain(rec.UnitPrice)
		row.InvoiceAmount = generic.FormatAmount(rec.InvoiceAmount)
		row.DiscountRate = plain(rec.DiscountRate)
	}
	if rec.PaymentID != "" {
		row.PaymentAmount = generic.FormatAmount(rec.PaymentAmount)
	}
	return row
}

// FromRecords renders every record.
func FromRecords(records []settlement.AllocationRecord) []Row {
	out := make([]Row, len(records))
	for i, rec := range records {
		out[i] = FromRecord(rec)
	}
	return out
}

func plain(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
