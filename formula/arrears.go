package formula

import "loan-workout/domain"

// downPaymentInterestDays is the extra month of interest charged when the
// borrower brings a down payment.
const downPaymentInterestDays = 30

type interestInput struct {
	LastPaidToResolution float64
	PerDiem              float64
	DownPayment          float64
	Deferment            domain.Deferment
	SkipDownPaymentDays  bool
}

func totalInterest(in interestInput) float64 {
	days := in.LastPaidToResolution
	if in.DownPayment > 0 && !in.SkipDownPaymentDays {
		days += downPaymentInterestDays
	}
	return days*in.PerDiem - forgiveLeg(in.Deferment)
}

type TotalArrearsInput struct {
	DownPayment          float64
	LastPaidToResolution float64
	PerDiem              float64
	Deferment            domain.Deferment
	LateFees             float64
	LegalFees            float64
	// LegacyFallthrough reproduces the historical arrears figure where the
	// down payment month was never charged.
	LegacyFallthrough bool
}

func TotalArrears(in TotalArrearsInput) float64 {
	interest := totalInterest(interestInput{
		LastPaidToResolution: in.LastPaidToResolution,
		PerDiem:              in.PerDiem,
		DownPayment:          in.DownPayment,
		Deferment:            in.Deferment,
		SkipDownPaymentDays:  in.LegacyFallthrough,
	})
	return Round2(interest + in.LateFees + in.LegalFees)
}

type NewUPBInput struct {
	TotalArrears float64
	CurrentUPB   float64
	DownPayment  float64
	Deferment    domain.Deferment
}

func NewUPB(in NewUPBInput) float64 {
	return Round2(in.CurrentUPB + in.TotalArrears - balloonLeg(in.Deferment, true) - in.DownPayment)
}
