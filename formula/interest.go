package formula

import "math"

const (
	fciServicer      = "FCI"
	fciDayBasis      = 360.0
	standardDayBasis = 365.0
)

// PurchaseToResolution is the number of days from note purchase to the
// payoff expiration date.
func PurchaseToResolution(purchaseDate, expirationDate string) float64 {
	return DaysBetween(purchaseDate, expirationDate)
}

// LastPaidToResolution counts days from the last paid installment to the
// payoff expiration date. The start is one month before the next due date,
// or the recorded last paid date when the next due date is unusable.
func LastPaidToResolution(nextDueDate, expirationDate, lastPaidDate string) float64 {
	if _, ok := ParseDate(nextDueDate); ok {
		return DaysBetweenOr("", expirationDate, nextDueDate)
	}
	return DaysBetween(lastPaidDate, expirationDate)
}

func MonthsDelinquent(nextDueDate, expirationDate string) float64 {
	next, ok := ParseDate(nextDueDate)
	if !ok {
		return math.NaN()
	}
	end, ok := ParseDate(expirationDate)
	if !ok {
		return math.NaN()
	}
	return float64(MonthsBetween(AddMonths(next, -1), end))
}

type PerDiemInput struct {
	OriginalRate float64 // system rate from the loan record
	OverrideRate float64
	UseOverride  bool
	UPB          float64
	Servicer     string
}

// PerDiem is the daily interest accrual. FCI-serviced loans accrue on a
// 360 day year, everything else on 365.
func PerDiem(in PerDiemInput) float64 {
	rate := in.OriginalRate
	if in.UseOverride {
		rate = in.OverrideRate
	}
	basis := standardDayBasis
	if in.Servicer == fciServicer {
		basis = fciDayBasis
	}
	return Round2(NormalizeRate(rate) * in.UPB / basis)
}

type AccruedInterestInput struct {
	PerDiem              float64
	LastPaidToResolution float64
}

func AccruedInterest(in AccruedInterestInput) float64 {
	return Round2(in.PerDiem * in.LastPaidToResolution)
}
