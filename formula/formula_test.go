package formula

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"loan-workout/domain"
)

func TestRound2_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 2.35, Round2(2.345))
	assert.Equal(t, -2.35, Round2(-2.345))
	assert.Equal(t, 33.33, Round2(100000*0.12/360))
	assert.True(t, math.IsNaN(Round2(math.NaN())))
	assert.True(t, math.IsInf(Round2(math.Inf(-1)), -1))
}

func TestNormalizeRate(t *testing.T) {
	assert.Equal(t, 0.12, NormalizeRate(12))
	assert.Equal(t, 0.12, NormalizeRate(0.12))
	assert.Equal(t, 0.0, NormalizeRate(1))
	assert.Equal(t, 0.0, NormalizeRate(0))
}

func TestPerDiem_DayBasisByServicer(t *testing.T) {
	fci := PerDiem(PerDiemInput{OriginalRate: 12, UPB: 100000, Servicer: "FCI"})
	assert.Equal(t, 33.33, fci)

	other := PerDiem(PerDiemInput{OriginalRate: 12, UPB: 100000, Servicer: "other"})
	assert.Equal(t, 32.88, other)

	fractional := PerDiem(PerDiemInput{OriginalRate: 0.12, UPB: 100000, Servicer: "FCI"})
	assert.Equal(t, 33.33, fractional)
}

func TestPerDiem_OverrideRate(t *testing.T) {
	in := PerDiemInput{OriginalRate: 12, OverrideRate: 6, UPB: 100000, Servicer: "FCI"}
	assert.Equal(t, 33.33, PerDiem(in))

	in.UseOverride = true
	assert.Equal(t, 16.67, PerDiem(in))
}

func TestDayCountMetrics(t *testing.T) {
	assert.Equal(t, 60.0, LastPaidToResolution("2024-02-01", "2024-03-01", "2023-01-01"))
	assert.Equal(t, 46.0, LastPaidToResolution("", "2024-03-01", "2024-01-15"))
	assert.True(t, math.IsNaN(LastPaidToResolution("", "2024-03-01", "")))

	assert.Equal(t, 5.0, MonthsDelinquent("2024-02-01", "2024-06-15"))
	assert.True(t, math.IsNaN(MonthsDelinquent("", "2024-06-15")))

	assert.Equal(t, 366.0, PurchaseToResolution("2023-03-01", "2024-03-01"))
}

func TestAccruedInterestAndTotals(t *testing.T) {
	assert.Equal(t, 1999.8, AccruedInterest(AccruedInterestInput{PerDiem: 33.33, LastPaidToResolution: 60}))
	assert.Equal(t, 51250.0, TotalExpenses(TotalExpensesInput{PurchasePrice: 50000, LegalFees: 1000}))
	assert.Equal(t, 103499.8, TotalDebt(TotalDebtInput{
		AccruedInterest: 1999.8, LegalFees: 1000, LateFees: 500, CurrentUPB: 100000,
	}))
}

func TestValueRatios(t *testing.T) {
	assert.Equal(t, 75.0, CLTV(CLTVInput{SeniorUPB: 100000, TotalDebt: 50000, FairMarketValue: 200000}))
	assert.Equal(t, 70.0, ITV(ITVInput{SeniorUPB: 100000, NotePrice: 40000, FairMarketValue: 200000}))
	assert.Equal(t, 200.0, EquityCoverage(EquityCoverageInput{SeniorUPB: 100000, FairMarketValue: 200000, TotalDebt: 50000}))
	assert.Equal(t, 2.0, UPBPurchaseRatio(UPBPurchaseRatioInput{UPB: 100000, PurchasePrice: 50000}))

	assert.True(t, math.IsInf(CLTV(CLTVInput{SeniorUPB: 1, TotalDebt: 1}), 1))
	assert.True(t, math.IsNaN(UPBPurchaseRatio(UPBPurchaseRatioInput{})))
}

func TestFirstPaymentDueDate_IgnoresDownPayment(t *testing.T) {
	want := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, FirstPaymentDueDate(FirstPaymentDueInput{ExpirationDate: "2024-01-31"}))
	assert.Equal(t, want, FirstPaymentDueDate(FirstPaymentDueInput{DownPayment: 5000, ExpirationDate: "2024-01-31"}))
	assert.True(t, FirstPaymentDueDate(FirstPaymentDueInput{ExpirationDate: ""}).IsZero())
}

func TestTotalArrears_DefermentLegs(t *testing.T) {
	base := TotalArrearsInput{LastPaidToResolution: 60, PerDiem: 10, LateFees: 100, LegalFees: 200}
	assert.Equal(t, 900.0, TotalArrears(base))

	forgive := base
	forgive.Deferment = domain.Deferment{Variant: domain.DefermentForgive, Amount: 100}
	assert.Equal(t, 800.0, TotalArrears(forgive))

	split := base
	split.Deferment = domain.Deferment{Variant: domain.DefermentSplit, Amount: 300, Amount2: 50}
	assert.Equal(t, 850.0, TotalArrears(split))

	balloon := base
	balloon.Deferment = domain.Deferment{Variant: domain.DefermentBalloon, Amount: 300}
	assert.Equal(t, 900.0, TotalArrears(balloon))

	upper := base
	upper.Deferment = domain.Deferment{Variant: "FORGIVE", Amount: 100}
	assert.Equal(t, 900.0, TotalArrears(upper), "arrears match variants case-sensitively")
}

// Pins the down payment month: charged by default, skipped in legacy mode.
func TestTotalArrears_DownPaymentMonth(t *testing.T) {
	in := TotalArrearsInput{DownPayment: 1000, LastPaidToResolution: 60, PerDiem: 10, LateFees: 100, LegalFees: 200}
	assert.Equal(t, 1200.0, TotalArrears(in))

	in.LegacyFallthrough = true
	assert.Equal(t, 900.0, TotalArrears(in))
}

func TestNewUPB(t *testing.T) {
	balloon := NewUPB(NewUPBInput{
		CurrentUPB: 100000, TotalArrears: 5000, DownPayment: 2000,
		Deferment: domain.Deferment{Variant: "BALLOON", Amount: 3000},
	})
	assert.Equal(t, 100000.0, balloon)

	plain := NewUPB(NewUPBInput{CurrentUPB: 100000, TotalArrears: 5000, DownPayment: 2000})
	assert.Equal(t, 103000.0, plain)

	split := NewUPB(NewUPBInput{
		CurrentUPB: 100000, TotalArrears: 5000, DownPayment: 2000,
		Deferment: domain.Deferment{Variant: domain.DefermentSplit, Amount: 3000, Amount2: 1000},
	})
	assert.Equal(t, 100000.0, split)

	forgive := NewUPB(NewUPBInput{
		CurrentUPB: 100000, TotalArrears: 5000, DownPayment: 2000,
		Deferment: domain.Deferment{Variant: domain.DefermentForgive, Amount: 3000},
	})
	assert.Equal(t, 103000.0, forgive)
}

func TestMonthlyPayment_StandardAmortization(t *testing.T) {
	got := MonthlyPayment(MonthlyPaymentInput{CurrentUPB: 100000, InterestRate: 12, Term: 360})
	assert.Equal(t, 1028.61, got)
}

func TestMonthlyPayment_DecreasesWithTerm(t *testing.T) {
	in := MonthlyPaymentInput{
		CurrentUPB: 80000, InterestRate: 7.5, LastPaidToResolution: 120, PerDiem: 16.44,
		DownPayment: 1500, LateFees: 250, LegalFees: 900,
		Deferment: domain.Deferment{Variant: domain.DefermentBalloon, Amount: 5000},
	}
	prev := math.Inf(1)
	for _, term := range []int{12, 60, 120, 240, 360, 480} {
		in.Term = term
		got := MonthlyPayment(in)
		assert.Less(t, got, prev, "term %d", term)
		prev = got
	}
}

func TestMonthlyPayment_Degenerate(t *testing.T) {
	zeroRate := MonthlyPayment(MonthlyPaymentInput{CurrentUPB: 100000, InterestRate: 0, Term: 360})
	assert.True(t, math.IsNaN(zeroRate))

	zeroTerm := MonthlyPayment(MonthlyPaymentInput{CurrentUPB: 100000, InterestRate: 6, Term: 0})
	assert.True(t, math.IsInf(zeroTerm, 0))
}

func TestMonthlyPayment_UnknownVariantIgnoresDeferment(t *testing.T) {
	plain := MonthlyPayment(MonthlyPaymentInput{CurrentUPB: 100000, InterestRate: 6, Term: 120})
	upper := MonthlyPayment(MonthlyPaymentInput{
		CurrentUPB: 100000, InterestRate: 6, Term: 120,
		Deferment: domain.Deferment{Variant: "BALLOON", Amount: 10000},
	})
	assert.Equal(t, plain, upper)
}

func TestNotePrice_IncreasesWithPayment(t *testing.T) {
	low := NotePrice(NotePriceInput{MonthlyPayment: 500, Term: 360})
	high := NotePrice(NotePriceInput{MonthlyPayment: 501, Term: 360})
	assert.Greater(t, high, low)
	assert.Equal(t, 0.0, NotePrice(NotePriceInput{MonthlyPayment: 500, Term: 4}))
}

func TestYearBuckets(t *testing.T) {
	years := YearBuckets(NetProfitInput{NotePrice: 80000, PurchaseToResolution: 20, TotalExpenses: 51250, DownPayment: 2000})
	assert.Equal(t, -51250.0, years[0].Total())
	assert.Equal(t, 0.0, years[1].Total())
	assert.Equal(t, 80000.0, years[2].BuySell)
	assert.Equal(t, 2000.0, years[2].Arrears)
	assert.InDelta(t, -13666.67, years[2].Finance, 0.01)
	assert.Equal(t, 0.0, years[3].Total())
}

func TestNetProfit(t *testing.T) {
	short := NetProfit(NetProfitInput{NotePrice: 80000, PurchaseToResolution: 10, TotalExpenses: 51250, DownPayment: 2000})
	assert.Equal(t, 23916.67, short)

	long := NetProfit(NetProfitInput{NotePrice: 80000, PurchaseToResolution: 40, TotalExpenses: 51250, DownPayment: 2000})
	assert.Equal(t, -76583.33, long, "note proceeds drop past year three")
}

func TestAPY(t *testing.T) {
	assert.Equal(t, 1.72, APY(APYInput{NetProfit: 0, TotalExpenses: 100, PurchaseToResolution: 365}))
	assert.True(t, math.IsNaN(APY(APYInput{})))
}
