// Package money rounds and formats monetary amounts for presentation.
//
// The amortization engine works at full float64 precision. Rounding to a
// currency precision is a separate step applied by callers on the way out,
// so every helper here takes the number of decimal places explicitly.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPlaces is the rounding precision used when a caller does not
// configure one (cents).
const DefaultPlaces int32 = 2

// MaxPlaces bounds the configurable precision.
const MaxPlaces int32 = 8

// Dec converts a float amount to a decimal. Non-finite values become zero;
// callers are expected to have validated their inputs before converting.
func Dec(x float64) decimal.Decimal {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(x)
}

// Round rounds x half away from zero to the given number of places.
func Round(x float64, places int32) float64 {
	return Dec(x).Round(places).InexactFloat64()
}

// RoundAll rounds every value in xs and returns a new slice.
func RoundAll(xs []float64, places int32) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = Round(x, places)
	}
	return out
}

// Format renders x with the given places and a thousands separator,
// e.g. Format(14794468.37, 0) == "14,794,468".
func Format(x float64, places int32) string {
	s := Dec(x).StringFixed(places)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatPercent renders a fraction-of-one rate as a percentage string,
// e.g. FormatPercent(0.0370312, 4) == "3.7031%".
func FormatPercent(rate float64, places int32) string {
	return Dec(rate).Mul(decimal.NewFromInt(100)).StringFixed(places) + "%"
}
