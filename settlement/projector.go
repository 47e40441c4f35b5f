package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// Project derives the display columns of engine output: proportionate
// quantity, final payment and normalized dates. It returns a new slice and
// is idempotent, so projecting twice equals projecting once.
func Project(records []AllocationRecord) []AllocationRecord {
	out := make([]AllocationRecord, len(records))
	for i, rec := range records {
		out[i] = project(rec)
	}
	return out
}

func project(rec AllocationRecord) AllocationRecord {
	unitPrice := rec.UnitPrice
	if unitPrice.IsZero() {
		unitPrice = decimal.NewFromInt(1)
	}

	discount := decimal.Zero
	if rec.DiscountAmount.Valid {
		discount = rec.DiscountAmount.Decimal
	}

	return rec.With(func(r *AllocationRecord) {
		r.ProportionateQuantity = rec.InvoiceAmount.Div(unitPrice)
		r.FinalPayment = rec.InvoiceAmount.Sub(discount)
		r.InvoiceDate = generic.FormatDate(rec.InvoiceDate)
		r.DueDate = generic.FormatDate(rec.DueDate)
		r.PaymentDate = generic.FormatDate(rec.PaymentDate)
	})
}
