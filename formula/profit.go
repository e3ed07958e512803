package formula

import "math"

const financeRate = 0.16

// YearBucket is one year of the resolution's cash flows.
type YearBucket struct {
	Arrears float64
	BuySell float64
	Finance float64
}

func (b YearBucket) Total() float64 {
	return b.Arrears + b.BuySell + b.Finance
}

type NetProfitInput struct {
	NotePrice            float64
	PurchaseToResolution float64
	TotalExpenses        float64
	DownPayment          float64
}

// YearBuckets spreads the purchase outlay, down payment, note sale and
// financing cost over years 0..3. The horizon is bucketed as if it were in
// months.
func YearBuckets(in NetProfitInput) [4]YearBucket {
	horizon := in.PurchaseToResolution
	outlay := -in.TotalExpenses

	var years [4]YearBucket
	years[0] = YearBucket{BuySell: outlay}
	switch {
	case horizon <= 12:
		years[1] = YearBucket{Arrears: in.DownPayment, BuySell: in.NotePrice}
	case horizon <= 24:
		years[2] = YearBucket{Arrears: in.DownPayment, BuySell: in.NotePrice}
	case horizon <= 36:
		years[3] = YearBucket{Arrears: in.DownPayment, BuySell: in.NotePrice}
	case horizon > 36:
		years[3] = YearBucket{Arrears: in.DownPayment}
	}
	years[2].Finance = outlay * (financeRate / 12 * horizon)
	return years
}

func NetProfit(in NetProfitInput) float64 {
	total := 0.0
	for _, year := range YearBuckets(in) {
		total += year.Total()
	}
	return Round2(total)
}

type APYInput struct {
	NetProfit            float64
	TotalExpenses        float64
	PurchaseToResolution float64
}

// APY approximates the annual yield with continuous compounding over the
// purchase-to-resolution horizon. Undefined for zero expenses.
func APY(in APYInput) float64 {
	growth := (in.TotalExpenses + in.NetProfit) / in.TotalExpenses
	return Round2(math.Exp(growth)*365/30*30/in.PurchaseToResolution - 1)
}
