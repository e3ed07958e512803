package service

import "time"

const (
	MaxMoneyAmount  = 1_000_000_000.0 // upper bound for balances, fees and prices
	MaxInterestRate = 100.0           // annual percent
	MaxTermMonths   = 600             // 50 years

	DefaultMaxOptions = 3

	CalculationCacheTTL = 10 * time.Minute

	// Suggestion search bounds.
	DefaultRateStep         = 0.25
	DefaultSuggestions      = 5
	MaxSuggestionRateSpan   = 50.0
	MaxSuggestionTerms      = 12

	// The grid is rates x terms; a step below a basis point or a grid past
	// MaxSuggestionCandidates is rejected before anything is solved.
	MinSuggestionRateStep   = 0.01
	MaxSuggestionCandidates = 5000
)
