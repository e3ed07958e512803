package formula

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary value to cents, half away from zero. NaN and
// infinities pass through untouched so callers can still see them.
func Round2(value float64) float64 {
	return roundTo(value, 2)
}

func roundTo(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// NormalizeRate turns a percent-typed input into a fraction. Values above 1
// are whole percents, values below 1 are already fractional, and exactly 1
// is treated as unset.
func NormalizeRate(rate float64) float64 {
	if rate > 1 {
		return rate / 100
	}
	if rate < 1 {
		return rate
	}
	return 0
}
