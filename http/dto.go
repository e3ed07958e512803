package http

import (
	"math"

	"loan-workout/domain"
	"loan-workout/service"
)

// MetricsResponse renders DerivedMetrics for JSON. Values that are not a
// number or infinite become null.
type MetricsResponse struct {
	PurchaseToResolution *float64 `json:"purchase_to_resolution"`
	LastPaidToResolution *float64 `json:"last_paid_to_resolution"`
	MonthsDelinquent     *float64 `json:"months_delinquent"`
	PerDiem              *float64 `json:"per_diem"`
	AccruedInterest      *float64 `json:"accrued_interest"`
	TotalArrears         *float64 `json:"total_arrears"`
	NewUPB               *float64 `json:"new_upb"`
	TotalDebt            *float64 `json:"total_debt"`
	TotalExpenses        *float64 `json:"total_expenses"`
	MonthlyPayment       *float64 `json:"monthly_payment"`
	NotePrice            *float64 `json:"note_price"`
	NetProfit            *float64 `json:"net_profit"`
	APY                  *float64 `json:"apy"`
	CLTV                 *float64 `json:"cltv"`
	ITV                  *float64 `json:"itv"`
	EquityCoverage       *float64 `json:"equity_coverage"`
	UPBPurchaseRatio     *float64 `json:"upb_purchase_ratio"`
	FirstPaymentDue      *string  `json:"first_payment_due"`
	Discrepancy          *float64 `json:"discrepancy"`
}

func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newMetricsResponse(m domain.DerivedMetrics) MetricsResponse {
	resp := MetricsResponse{
		PurchaseToResolution: number(m.PurchaseToResolution),
		LastPaidToResolution: number(m.LastPaidToResolution),
		MonthsDelinquent:     number(m.MonthsDelinquent),
		PerDiem:              number(m.PerDiem),
		AccruedInterest:      number(m.AccruedInterest),
		TotalArrears:         number(m.TotalArrears),
		NewUPB:               number(m.NewUPB),
		TotalDebt:            number(m.TotalDebt),
		TotalExpenses:        number(m.TotalExpenses),
		MonthlyPayment:       number(m.MonthlyPayment),
		NotePrice:            number(m.NotePrice),
		NetProfit:            number(m.NetProfit),
		APY:                  number(m.APY),
		CLTV:                 number(m.CLTV),
		ITV:                  number(m.ITV),
		EquityCoverage:       number(m.EquityCoverage),
		UPBPurchaseRatio:     number(m.UPBPurchaseRatio),
		Discrepancy:          number(m.Discrepancy),
	}
	if !m.FirstPaymentDue.IsZero() {
		due := m.FirstPaymentDue.Format("2006-01-02")
		resp.FirstPaymentDue = &due
	}
	return resp
}

type SessionResponse struct {
	ID            string                   `json:"id"`
	ResolutionID  string                   `json:"resolution_id"`
	Loan          domain.LoanSnapshot      `json:"loan"`
	Request       domain.ResolutionRequest `json:"request"`
	Inputs        domain.EditableInputs    `json:"inputs"`
	Metrics       MetricsResponse          `json:"metrics"`
	Options       []domain.Option          `json:"options"`
	CurrentOption int                      `json:"current_option"`
	SaveRequired  bool                     `json:"save_required"`
	Persisting    domain.PersistingData    `json:"persisting"`
}

func newSessionResponse(v service.SessionView) SessionResponse {
	options := v.Options
	if options == nil {
		options = []domain.Option{}
	}
	return SessionResponse{
		ID:            v.ID,
		ResolutionID:  v.ResolutionID,
		Loan:          v.Loan,
		Request:       v.Request,
		Inputs:        v.Inputs,
		Metrics:       newMetricsResponse(v.Metrics),
		Options:       options,
		CurrentOption: v.CurrentOption,
		SaveRequired:  v.SaveRequired,
		Persisting:    v.Persisting,
	}
}

type OpenWorkoutRequest struct {
	Loan    domain.LoanSnapshot      `json:"loan"`
	Request domain.ResolutionRequest `json:"request"`
}
