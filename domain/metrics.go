package domain

import "time"

// DerivedMetrics is owned by the recalculation engine. Day counts and ratios
// are NaN when their inputs are unknown; consumers render NaN as zero.
type DerivedMetrics struct {
	PurchaseToResolution float64   `json:"purchase_to_resolution"`
	LastPaidToResolution float64   `json:"last_paid_to_resolution"`
	MonthsDelinquent     float64   `json:"months_delinquent"`
	PerDiem              float64   `json:"per_diem"`
	AccruedInterest      float64   `json:"accrued_interest"`
	TotalArrears         float64   `json:"total_arrears"`
	NewUPB               float64   `json:"new_upb"`
	TotalDebt            float64   `json:"total_debt"`
	TotalExpenses        float64   `json:"total_expenses"`
	MonthlyPayment       float64   `json:"monthly_payment"`
	NotePrice            float64   `json:"note_price"`
	NetProfit            float64   `json:"net_profit"`
	APY                  float64   `json:"apy"`
	CLTV                 float64   `json:"cltv"`
	ITV                  float64   `json:"itv"`
	EquityCoverage       float64   `json:"equity_coverage"`
	UPBPurchaseRatio     float64   `json:"upb_purchase_ratio"`
	FirstPaymentDue      time.Time `json:"first_payment_due"`
	Discrepancy          float64   `json:"discrepancy"`
}

type DiscrepancyAction string

const (
	ApplyToLegalFees     DiscrepancyAction = "legal"
	ApplyToLateFees      DiscrepancyAction = "late"
	DisregardDiscrepancy DiscrepancyAction = "disregard"
)
