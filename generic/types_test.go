package generic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/settlement-engine/generic"
)

// =============================================================================
// AMOUNTS
// =============================================================================

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"100":        "100",
		" 255.00 ":   "255",
		"1,250.50":   "1250.5",
		"-12.5":      "-12.5",
		"":           "0",
		"abc":        "0",
		"12.5.3":     "0",
		"1 000":      "1000",
	}
	for in, want := range tests {
		got := generic.ParseAmount(in)
		assert.True(t, got.Equal(generic.MustParseDecimal(want)), "%q: got %s", in, got)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "5.10", generic.FormatAmount(generic.MustParseDecimal("5.1")))
	assert.Equal(t, "0.00", generic.FormatAmount(generic.MustParseDecimal("0")))
	assert.Equal(t, "1.24", generic.FormatAmount(generic.MustParseDecimal("1.235")))
}

func TestAmountsEqual(t *testing.T) {
	a := generic.MustParseDecimal("10.004")
	b := generic.MustParseDecimal("10.001")
	assert.True(t, generic.AmountsEqual(a, b, generic.DisplayPlaces))
	assert.False(t, generic.AmountsEqual(a, generic.MustParseDecimal("10.01"), generic.DisplayPlaces))
}
