/*
engine.go - FIFO allocation of payments to invoices

PURPOSE:
  Walks invoices in input order and consumes payments in input order,
  emitting one AllocationRecord per (invoice, payment) overlap.

ALGORITHM:
  A cursor holds the index of the payment being consumed and what is left
  of it. The cursor survives from one invoice to the next: one payment may
  settle several invoices and one invoice may need several payments.

  For each invoice, while it has an open amount and payment money remains:
    1. If the current payment is used up, advance to the next one
    2. Compute the day difference (due date vs payment date)
    3. Compare open invoice amount with open payment amount:
         equal   -> Full Match          (both closed)
         smaller -> Adjusted            (invoice closed, payment reduced)
         larger  -> Partially Adjusted  (payment closed, invoice reduced)

  Only for the LAST invoice:
    - Adjusted leaves payment money over -> one Excess Payment split row
    - Partially Adjusted leaves invoice money over -> one Unadjusted Invoice split row

EDGE POLICY:
  - Comparison is exact decimal equality, no tolerance.
  - An invoice other than the last one that runs out of payments keeps its
    open amount unreported. No row is emitted for it.
  - Payments after the one that closes the last invoice are not reported.
  - Output order is emission order.

COMPLEXITY:
  O(|invoices| + |payments|) records; every iteration closes an invoice,
  a payment, or both.

SEE ALSO:
  - discount.go: Discount gating on the day difference
  - projector.go: Derived columns computed after the walk
*/
package settlement

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// =============================================================================
// CURSOR - Position in the payment list, threaded through the walk
// =============================================================================

type cursor struct {
	payments  []PaymentRecord
	index     int             // -1 before the first payment
	remaining decimal.Decimal // unallocated part of payments[index]
}

func newCursor(payments []PaymentRecord) cursor {
	return cursor{payments: payments, index: -1, remaining: decimal.Zero}
}

func (c cursor) hasNext() bool  { return c.index+1 < len(c.payments) }
func (c cursor) hasMoney() bool { return c.remaining.IsPositive() }

// live reports whether any payment money is still reachable.
func (c cursor) live() bool { return c.hasMoney() || c.hasNext() }

func (c cursor) current() PaymentRecord { return c.payments[c.index] }

func (c cursor) advance() cursor {
	c.index++
	c.remaining = c.payments[c.index].Amount
	return c
}

func (c cursor) consume(amount decimal.Decimal) cursor {
	c.remaining = c.remaining.Sub(amount)
	return c
}

// =============================================================================
// ALLOCATE
// =============================================================================

// Allocate matches invoices against payments in arrival order.
// Neither input slice is modified. Records with a non-positive amount are
// ignored; callers normally filter them out beforehand.
func Allocate(invoices []InvoiceRecord, payments []PaymentRecord) []AllocationRecord {
	invs := positiveInvoices(invoices)
	cur := newCursor(positivePayments(payments))

	out := make([]AllocationRecord, 0, len(invs)+len(cur.payments))
	for i, inv := range invs {
		var records []AllocationRecord
		records, cur = allocateInvoice(inv, i == len(invs)-1, cur)
		out = append(out, records...)
	}
	return out
}

func allocateInvoice(inv InvoiceRecord, last bool, cur cursor) ([]AllocationRecord, cursor) {
	var out []AllocationRecord
	open := inv.Amount

	for open.IsPositive() && cur.live() {
		if !cur.hasMoney() {
			cur = cur.advance()
		}
		pay := cur.current()
		days := generic.DaysBetween(inv.DueDate, pay.PaymentDate)

		switch open.Cmp(cur.remaining) {
		case 0:
			out = append(out, matched(inv, pay, open, days, CaseFullMatch))
			cur = cur.consume(open)
			open = decimal.Zero

		case -1:
			out = append(out, matched(inv, pay, open, days, CaseAdjusted))
			cur = cur.consume(open)
			open = decimal.Zero
			if last && cur.hasMoney() {
				out = append(out, excessPayment(pay, cur.remaining))
				cur = cur.consume(cur.remaining)
			}

		default:
			amount := cur.remaining
			out = append(out, matched(inv, pay, amount, days, CasePartiallyAdjusted))
			cur = cur.consume(amount)
			open = open.Sub(amount)
			if last && open.IsPositive() {
				out = append(out, unadjustedInvoice(inv, open))
				open = decimal.Zero
			}
		}
	}
	return out, cur
}

// =============================================================================
// RECORD CONSTRUCTION
// =============================================================================

func matched(inv InvoiceRecord, pay PaymentRecord, amount decimal.Decimal, days generic.DayDiff, note CaseLabel) AllocationRecord {
	discount := Discount(amount, inv.DiscountRate, days)
	return invoiceSide(inv).With(func(r *AllocationRecord) {
		r.PaymentID = pay.ID
		r.PaymentDocNo = pay.PaymentDocNo
		r.PaymentDate = pay.PaymentDate
		r.InvoiceAmount = amount
		r.PaymentAmount = amount
		r.DaysDifference = days
		r.DiscountAmount = discount
		r.FinalPayment = settle(amount, discount)
		r.Note = note
	})
}

func excessPayment(pay PaymentRecord, leftover decimal.Decimal) AllocationRecord {
	return paymentSide(pay).With(func(r *AllocationRecord) {
		r.PaymentAmount = leftover
		r.DaysDifference = generic.NotApplicable
		r.Note = CaseExcessPayment
		r.Split = r.Note.IsSplit()
	})
}

func unadjustedInvoice(inv InvoiceRecord, leftover decimal.Decimal) AllocationRecord {
	return invoiceSide(inv).With(func(r *AllocationRecord) {
		r.InvoiceAmount = leftover
		r.DaysDifference = generic.NotApplicable
		r.FinalPayment = leftover
		r.Note = CaseUnadjustedInvoice
		r.Split = r.Note.IsSplit()
	})
}

func positiveInvoices(in []InvoiceRecord) []InvoiceRecord {
	return lo.Filter(in, func(inv InvoiceRecord, _ int) bool { return inv.Amount.IsPositive() })
}

func positivePayments(in []PaymentRecord) []PaymentRecord {
	return lo.Filter(in, func(p PaymentRecord, _ int) bool { return p.Amount.IsPositive() })
}
