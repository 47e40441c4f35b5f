package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// Discount returns amount × ratePercent / 100 when days is numeric and an
// absent value otherwise. The size of the day count does not matter, only
// whether one exists.
func Discount(amount, ratePercent decimal.Decimal, days generic.DayDiff) decimal.NullDecimal {
	if !days.IsNumeric() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount.Mul(ratePercent).Div(generic.Hundred()))
}

// settle is the amount actually due once an optional discount is applied.
func settle(amount decimal.Decimal, discount decimal.NullDecimal) decimal.Decimal {
	if !discount.Valid {
		return amount
	}
	return amount.Sub(discount.Decimal)
}
