/*
Package generic provides the domain-agnostic primitives of the settlement engine.

PURPOSE:
  This package contains the building blocks every other package leans on:
  exact money arithmetic, calendar dates in the worksheet's DD-MM-YYYY
  shape, the day-difference sentinel and the run history contract. It has
  no knowledge of invoices or payments.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amounts: decimal.Decimal values parsed defensively from worksheet text
  - Formatting: two fixed decimal places for display and export
  - Precision: comparisons helpers for "equal within formatting precision"

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so exact equality is reachable
  2. Degradation: Unparsable text becomes zero, never an error
  3. No floats: float64 never enters engine arithmetic

USAGE:
  amt := generic.ParseAmount(" 1,250.50 ")   // 1250.5
  generic.FormatAmount(amt)                  // "1250.50"

SEE ALSO:
  - time.go: Calendar dates and day differences
  - errors.go: Sentinel errors for the outer layers
  - store.go: Run history persistence interface
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNTS - Exact decimal values
// =============================================================================

// DisplayPlaces is the number of decimal places used when amounts are rendered.
const DisplayPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// Hundred returns the percentage divisor.
func Hundred() decimal.Decimal { return hundred }

// ParseAmount converts worksheet text into a decimal. Whitespace and
// thousands separators are ignored; anything else unparsable yields zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MustParseDecimal parses a literal, returning zero on failure.
// Intended for constants and tests.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount with DisplayPlaces fixed decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(DisplayPlaces)
}

// FormatOptionalAmount renders a nullable amount; an absent value renders empty.
func FormatOptionalAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return FormatAmount(d.Decimal)
}

// AmountsEqual reports whether a and b are equal once rounded to places.
func AmountsEqual(a, b decimal.Decimal, places int32) bool {
	return a.Round(places).Equal(b.Round(places))
}

// SumAmounts adds amounts together.
func SumAmounts(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
