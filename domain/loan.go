package domain

// LoanSnapshot is the system-of-record view of the loan. Dates are kept as
// the strings the source record carries; the formula package parses them.
type LoanSnapshot struct {
	LoanNumber            string  `json:"loan_number"`
	UnpaidPrincipal       float64 `json:"unpaid_principal_balance"`
	SeniorUnpaidPrincipal float64 `json:"senior_unpaid_principal_balance"`
	PurchasePrice         float64 `json:"purchase_price"`
	PurchaseDate          string  `json:"purchase_date"`
	OriginalInterestRate  float64 `json:"original_interest_rate"`
	Servicer              string  `json:"servicer"`
	NextDueDate           string  `json:"next_due_date"`
	LastPaidDate          string  `json:"last_paid_date"`
	FairMarketValue       float64 `json:"fair_market_value"`
}

type PayoffComponents struct {
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	LegalFees float64 `json:"legal_fees"`
	LateFees  float64 `json:"late_fees"`
	PerDiem   float64 `json:"per_diem"`
}

// ResolutionRequest is the borrower's submitted payoff request.
type ResolutionRequest struct {
	LoanNumber              string           `json:"loan_number"`
	Payoff                  PayoffComponents `json:"payoff"`
	PayoffTotal             float64          `json:"payoff_total"`
	RequestedSeniorUPB      float64          `json:"senior_upb"`
	PayoffDate              string           `json:"payoff_date"` // expiration date of the payoff quote
	RequestedMonthlyPayment float64          `json:"requested_monthly_payment"`
	RequestedDownPayment    float64          `json:"requested_down_payment"`
	Comments                string           `json:"comments"`
	History                 []HistoryEntry   `json:"history,omitempty"`
	AttachmentID            string           `json:"attachment_id,omitempty"`
}

type HistoryEntry struct {
	Date   string `json:"date"`
	Author string `json:"author"`
	Note   string `json:"note"`
}
