package formula

import (
	"math"

	"loan-workout/domain"
)

const (
	// standardYield is the 14% annual yield note buyers price against.
	standardYield = 14.0 / 100 / 12
	notePriceLag  = 4
	ratePrecision = 6
	monthsPerYear = 12
)

type MonthlyPaymentInput struct {
	CurrentUPB           float64
	InterestRate         float64 // annual, whole percent
	Term                 int     // months
	Deferment            domain.Deferment
	LastPaidToResolution float64
	PerDiem              float64
	DownPayment          float64
	LateFees             float64
	LegalFees            float64
}

// MonthlyPayment solves the annuity payment for the modified loan. The
// present value is the current balance plus arrears left after the down
// payment; a deferred balloon is the future value. A zero term or rate has no
// solution and yields NaN or an infinity.
func MonthlyPayment(in MonthlyPaymentInput) float64 {
	rate := roundTo(in.InterestRate/100/monthsPerYear, ratePrecision)

	interest := totalInterest(interestInput{
		LastPaidToResolution: in.LastPaidToResolution,
		PerDiem:              in.PerDiem,
		DownPayment:          in.DownPayment,
		Deferment:            in.Deferment,
	})
	arrearsLeft := interest + in.LateFees + in.LegalFees - in.DownPayment
	presentValue := in.CurrentUPB + arrearsLeft - balloonLeg(in.Deferment, false)
	futureValue := balloonFutureValue(in.Deferment)

	pvif := math.Pow(1+rate, float64(in.Term))
	return Round2(rate * (presentValue*pvif + futureValue) / (pvif - 1))
}

type NotePriceInput struct {
	MonthlyPayment float64
	Term           int
}

// NotePrice discounts the payment stream at the standard yield, skipping the
// first four months.
func NotePrice(in NotePriceInput) float64 {
	periods := float64(in.Term - notePriceLag)
	return Round2(in.MonthlyPayment / standardYield * (1 - math.Pow(1+standardYield, -periods)))
}
