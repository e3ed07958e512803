package domain

import "time"

// Option is one saved candidate resolution plan, keyed by its position.
type Option struct {
	ID              int          `json:"id"`
	Inputs          OptionInputs `json:"inputs"`
	MonthlyPayment  float64      `json:"monthly_payment"`
	NewUPB          float64      `json:"new_upb"`
	FirstPaymentDue time.Time    `json:"first_payment_due"`
}

// PersistingData is the loan-level state stored next to the options so a
// reopened resolution shows the same figures.
type PersistingData struct {
	PerDiem              float64 `json:"per_diem"`
	PerDiemRate          float64 `json:"per_diem_rate"` // override; zero uses the loan's rate
	UseRequestedSenior   bool    `json:"use_requested_senior_upb"`
	LegalFees            float64 `json:"legal_fees"`
	LateFees             float64 `json:"late_fees"`
	AccruedInterest      float64 `json:"accrued_interest"`
	PastWorkout          float64 `json:"past_workout"`
	PurchasePrice        float64 `json:"purchase_price"`
	PurchaseDate         string  `json:"purchase_date"`
	CurrentUPB           float64 `json:"current_upb"`
	PurchaseToResolution float64 `json:"purchase_to_resolution"`
	LastPaidToResolution float64 `json:"last_paid_to_resolution"`
	MonthsDelinquent     float64 `json:"months_delinquent"`
	UPBPurchaseRatio     float64 `json:"upb_purchase_ratio"`
}
