package formula

import (
	"strings"

	"loan-workout/domain"
)

// Variant matching is exact (lowercase) for the arrears and payment paths and
// case-insensitive for the new balance. Unknown variants behave like none.

func variantIs(d domain.Deferment, v domain.DefermentVariant, foldCase bool) bool {
	if foldCase {
		return strings.EqualFold(string(d.Variant), string(v))
	}
	return d.Variant == v
}

// forgiveLeg is the part of the deferment written off against arrears.
func forgiveLeg(d domain.Deferment) float64 {
	switch {
	case variantIs(d, domain.DefermentForgive, false):
		return d.Amount
	case variantIs(d, domain.DefermentSplit, false):
		return d.Amount2
	}
	return 0
}

// balloonLeg is the part of the deferment carried to maturity and taken out
// of the new balance.
func balloonLeg(d domain.Deferment, foldCase bool) float64 {
	if variantIs(d, domain.DefermentBalloon, foldCase) || variantIs(d, domain.DefermentSplit, foldCase) {
		return d.Amount
	}
	return 0
}

// balloonFutureValue is the lump sum left at maturity, zero unless a known
// deferment variant is selected.
func balloonFutureValue(d domain.Deferment) float64 {
	switch d.Variant {
	case domain.DefermentForgive, domain.DefermentBalloon, domain.DefermentSplit:
		return d.Amount
	}
	return 0
}
