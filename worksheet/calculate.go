package worksheet

import (
	"github.com/warp/settlement-engine/settlement"
)

// Split parses rows into invoices and payments, preserving their relative
// order. Row i contributes an invoice when its invoice amount is positive
// and a payment when its payment amount is positive.
func Split(rows []Row) ([]settlement.InvoiceRecord, []settlement.PaymentRecord) {
	var invoices []settlement.InvoiceRecord
	var payments []settlement.PaymentRecord
	for i, r := range rows {
		if inv, ok := toInvoice(i, r); ok {
			invoices = append(invoices, inv)
		}
		if pay, ok := toPayment(i, r); ok {
			payments = append(payments, pay)
		}
	}
	return invoices, payments
}

// Result is the outcome of one calculation pass.
type Result struct {
	InputRows    int
	InvoiceCount int
	PaymentCount int
	Records      []settlement.AllocationRecord
	Summary      settlement.Summary
}

// Rows renders the records as worksheet rows.
func (r Result) Rows() []Row {
	return FromRecords(r.Records)
}

// Calculate runs Split, the allocation engine and the projector.
func Calculate(rows []Row) Result {
	invoices, payments := Split(rows)
	records := settlement.Project(settlement.Allocate(invoices, payments))
	return Result{
		InputRows:    len(rows),
		InvoiceCount: len(invoices),
		PaymentCount: len(payments),
		Records:      records,
		Summary:      settlement.Summarize(records),
	}
}

// CalculateRows is Calculate rendered straight back into rows.
func CalculateRows(rows []Row) []Row {
	return Calculate(rows).Rows()
}
