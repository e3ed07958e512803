package domain

type SuggestionInput struct {
	RateMin        float64 `json:"rate_min"`
	RateMax        float64 `json:"rate_max"`
	RateStep       float64 `json:"rate_step"`
	AvailableTerms []int   `json:"available_terms"`
	Limit          int     `json:"limit"`
}

type Suggestion struct {
	Term           int     `json:"term"`
	InterestRate   float64 `json:"interest_rate"`
	MonthlyPayment float64 `json:"monthly_payment"`
	NotePrice      float64 `json:"note_price"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
}

type SuggestionResult struct {
	TargetPayment float64      `json:"target_payment"`
	Suggestions   []Suggestion `json:"suggestions"`
}
