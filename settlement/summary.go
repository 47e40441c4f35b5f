package settlement

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// Summary aggregates a list of allocation records.
type Summary struct {
	TotalInvoiced decimal.Decimal
	TotalPaid     decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalFinal    decimal.Decimal
	Records       int
	Splits        int
	ByCase        map[CaseLabel]int
}

// Summarize totals the records. Absent discounts count as zero.
func Summarize(records []AllocationRecord) Summary {
	s := Summary{
		TotalInvoiced: generic.SumAmounts(lo.Map(records, func(r AllocationRecord, _ int) decimal.Decimal { return r.InvoiceAmount })...),
		TotalPaid:     generic.SumAmounts(lo.Map(records, func(r AllocationRecord, _ int) decimal.Decimal { return r.PaymentAmount })...),
		TotalDiscount: generic.SumAmounts(lo.Map(records, func(r AllocationRecord, _ int) decimal.Decimal { return r.DiscountAmount.Decimal })...),
		TotalFinal:    generic.SumAmounts(lo.Map(records, func(r AllocationRecord, _ int) decimal.Decimal { return r.FinalPayment })...),
		Records:       len(records),
		ByCase:        make(map[CaseLabel]int, len(AllCaseLabels())),
	}
	for _, r := range records {
		if r.Split {
			s.Splits++
		}
		s.ByCase[r.Note]++
	}
	return s
}

// InvoiceTotals sums InvoiceAmount per invoice ID, skipping excess rows.
func InvoiceTotals(records []AllocationRecord) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.InvoiceID == "" {
			continue
		}
		totals[r.InvoiceID] = totals[r.InvoiceID].Add(r.InvoiceAmount)
	}
	return totals
}
