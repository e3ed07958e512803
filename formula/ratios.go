package formula

import "time"

// closingCost is the flat add-on carried by every resolution's expenses.
const closingCost = 250.0

type TotalExpensesInput struct {
	PurchasePrice float64
	LegalFees     float64
}

func TotalExpenses(in TotalExpensesInput) float64 {
	return Round2(in.PurchasePrice + in.LegalFees + closingCost)
}

type TotalDebtInput struct {
	AccruedInterest float64
	LegalFees       float64
	LateFees        float64
	CurrentUPB      float64
}

func TotalDebt(in TotalDebtInput) float64 {
	return Round2(in.AccruedInterest + in.LegalFees + in.LateFees + in.CurrentUPB)
}

type CLTVInput struct {
	SeniorUPB       float64
	TotalDebt       float64
	FairMarketValue float64
}

// CLTV is the combined loan-to-value percentage.
func CLTV(in CLTVInput) float64 {
	return Round2((in.SeniorUPB + in.TotalDebt) / in.FairMarketValue * 100)
}

type ITVInput struct {
	SeniorUPB       float64
	NotePrice       float64
	FairMarketValue float64
}

// ITV is the investment-to-value percentage.
func ITV(in ITVInput) float64 {
	return Round2((in.SeniorUPB + in.NotePrice) / in.FairMarketValue * 100)
}

type EquityCoverageInput struct {
	SeniorUPB       float64
	FairMarketValue float64
	TotalDebt       float64
}

func EquityCoverage(in EquityCoverageInput) float64 {
	return Round2((in.FairMarketValue - in.SeniorUPB) / in.TotalDebt * 100)
}

type UPBPurchaseRatioInput struct {
	UPB           float64
	PurchasePrice float64
}

func UPBPurchaseRatio(in UPBPurchaseRatioInput) float64 {
	return Round2(in.UPB / in.PurchasePrice)
}

type FirstPaymentDueInput struct {
	DownPayment    float64 // accepted but does not move the date
	ExpirationDate string
}

// FirstPaymentDueDate is one calendar month after the payoff expiration. The
// zero time is returned when the expiration date is unusable.
func FirstPaymentDueDate(in FirstPaymentDueInput) time.Time {
	exp, ok := ParseDate(in.ExpirationDate)
	if !ok {
		return time.Time{}
	}
	return AddMonths(exp, 1)
}
