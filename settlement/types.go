/*
Package settlement reconciles invoices against payments.

PURPOSE:
  Given invoices and payments in arrival order, the engine matches them
  first-in first-out, splitting amounts across partial matches, and derives
  an early-payment discount whenever the payment landed strictly before the
  invoice's due date. The projector then derives display quantities.

KEY CONCEPTS IN THIS FILE (types.go):
  - InvoiceRecord / PaymentRecord: immutable engine inputs
  - AllocationRecord: one matched (or synthetic leftover) settlement
  - CaseLabel: the fixed vocabulary describing how a record arose

DESIGN PRINCIPLES:
  1. Purity: Allocate and Project are functions of their arguments only
  2. Precision: decimal.Decimal amounts make exact equality reachable
  3. Copy-on-write: records are rebuilt with overrides, never mutated
  4. Absent is not zero: a missing discount is an invalid NullDecimal

SEE ALSO:
  - engine.go: The allocation walk
  - discount.go: Discount gating
  - projector.go: Post-processing of engine output
*/
package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// =============================================================================
// CASE LABELS
// =============================================================================

type CaseLabel string

const (
	CaseFullMatch         CaseLabel = "Full Match"
	CaseAdjusted          CaseLabel = "Adjusted"
	CasePartiallyAdjusted CaseLabel = "Partially Adjusted"
	CaseExcessPayment     CaseLabel = "Excess Payment"
	CaseUnadjustedInvoice CaseLabel = "Unadjusted Invoice"
)

// AllCaseLabels returns the vocabulary in display order.
func AllCaseLabels() []CaseLabel {
	return []CaseLabel{
		CaseFullMatch,
		CaseAdjusted,
		CasePartiallyAdjusted,
		CaseExcessPayment,
		CaseUnadjustedInvoice,
	}
}

func (c CaseLabel) String() string { return string(c) }

// IsSplit reports whether the label only ever appears on synthetic leftover rows.
func (c CaseLabel) IsSplit() bool {
	return c == CaseExcessPayment || c == CaseUnadjustedInvoice
}

// =============================================================================
// INPUT RECORDS
// =============================================================================

type InvoiceRecord struct {
	ID           string
	Amount       decimal.Decimal
	DueDate      string
	DiscountRate decimal.Decimal // percentage; not range-checked

	// Carried through to allocation records unmodified.
	ProductCode   string
	Description   string
	InvoiceNumber string
	InvoiceDate   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal // zero when absent or unparsable
}

type PaymentRecord struct {
	ID           string
	Amount       decimal.Decimal
	PaymentDate  string
	PaymentDocNo string
}

// =============================================================================
// ALLOCATION RECORD - Unit of engine output
// =============================================================================

type AllocationRecord struct {
	InvoiceID string // empty for Excess Payment
	PaymentID string // empty for Unadjusted Invoice

	ProductCode   string
	Description   string
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	DiscountRate  decimal.Decimal

	PaymentDocNo string
	PaymentDate  string

	InvoiceAmount         decimal.Decimal
	PaymentAmount         decimal.Decimal
	DaysDifference        generic.DayDiff
	DiscountAmount        decimal.NullDecimal
	FinalPayment          decimal.Decimal
	ProportionateQuantity decimal.Decimal

	Note  CaseLabel
	Split bool
}

// With returns a copy of r with fn applied to it. r itself is untouched.
func (r AllocationRecord) With(fn func(*AllocationRecord)) AllocationRecord {
	out := r
	fn(&out)
	return out
}

// invoiceSide seeds a record with the descriptive fields of an invoice.
func invoiceSide(inv InvoiceRecord) AllocationRecord {
	return AllocationRecord{
		InvoiceID:     inv.ID,
		ProductCode:   inv.ProductCode,
		Description:   inv.Description,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Quantity:      inv.Quantity,
		UnitPrice:     inv.UnitPrice,
		DiscountRate:  inv.DiscountRate,
	}
}

// paymentSide seeds a record with the descriptive fields of a payment.
func paymentSide(pay PaymentRecord) AllocationRecord {
	return AllocationRecord{
		PaymentID:    pay.ID,
		PaymentDocNo: pay.PaymentDocNo,
		PaymentDate:  pay.PaymentDate,
	}
}
