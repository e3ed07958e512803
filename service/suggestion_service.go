package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"loan-workout/domain"
	"loan-workout/formula"
)

// SuggestionService searches (term, rate) pairs for the option whose monthly
// payment lands closest to what the borrower asked for.
type SuggestionService struct {
	sessions  *SessionStore
	aiService *AIService
	log       *logrus.Logger
	defaults  domain.SuggestionInput
}

func NewSuggestionService(sessions *SessionStore, aiService *AIService, log *logrus.Logger, defaults domain.SuggestionInput) *SuggestionService {
	return &SuggestionService{sessions: sessions, aiService: aiService, log: log, defaults: defaults}
}

// scenario is the part of the session a candidate payment is solved against.
type scenario struct {
	inputs  domain.EditableInputs
	metrics domain.DerivedMetrics
	upb     float64
	target  float64
}

func (s *SuggestionService) Suggest(ctx context.Context, id string, input domain.SuggestionInput) (domain.SuggestionResult, error) {
	input = s.withDefaults(input)
	if err := validateSuggestionInput(input); err != nil {
		return domain.SuggestionResult{}, err
	}

	var sc scenario
	err := s.sessions.with(id, func(sess *Session) error {
		if !sess.engine.Ready() {
			return ErrNotReady
		}
		loan, req := sess.engine.Snapshot()
		sc = scenario{
			inputs:  sess.engine.Inputs(),
			metrics: sess.engine.Metrics(),
			upb:     loan.UnpaidPrincipal,
			target:  req.RequestedMonthlyPayment,
		}
		if sc.inputs.CurrentUPB != 0 {
			sc.upb = sc.inputs.CurrentUPB
		}
		if sc.inputs.Option.DownPayment == 0 {
			sc.inputs.Option.DownPayment = req.RequestedDownPayment
		}
		return nil
	})
	if err != nil {
		return domain.SuggestionResult{}, err
	}

	suggestions := s.evaluate(sc, input)
	if len(suggestions) == 0 {
		return domain.SuggestionResult{}, fmt.Errorf("no term and rate produce a valid payment: %w", ErrInvalidInput)
	}
	if len(suggestions) > input.Limit {
		suggestions = suggestions[:input.Limit]
	}

	s.log.WithFields(logrus.Fields{
		"session":    id,
		"candidates": len(suggestions),
		"target":     sc.target,
	}).Debug("option suggestions evaluated")
	suggestions[0].Reason = s.aiService.ExplainSuggestion(ctx, suggestions[0], sc.target, sc.metrics.NewUPB, suggestions[1:])

	return domain.SuggestionResult{
		TargetPayment: sc.target,
		Suggestions:   suggestions,
	}, nil
}

func (s *SuggestionService) withDefaults(in domain.SuggestionInput) domain.SuggestionInput {
	if in.RateMin == 0 && in.RateMax == 0 {
		in.RateMin, in.RateMax = s.defaults.RateMin, s.defaults.RateMax
	}
	if in.RateStep == 0 {
		in.RateStep = DefaultRateStep
	}
	if len(in.AvailableTerms) == 0 {
		in.AvailableTerms = s.defaults.AvailableTerms
	}
	if in.Limit <= 0 {
		in.Limit = DefaultSuggestions
	}
	return in
}

func validateSuggestionInput(in domain.SuggestionInput) error {
	if in.RateMin <= 0 || in.RateMin > in.RateMax {
		return fmt.Errorf("rate range must be positive and ordered: %w", ErrInvalidInput)
	}
	if in.RateMax > MaxInterestRate || in.RateMax-in.RateMin > MaxSuggestionRateSpan {
		return fmt.Errorf("rate range exceeds %.0f points: %w", MaxSuggestionRateSpan, ErrInvalidInput)
	}
	if !(in.RateStep >= MinSuggestionRateStep) {
		return fmt.Errorf("rate step must be at least %.2f: %w", MinSuggestionRateStep, ErrInvalidInput)
	}
	if len(in.AvailableTerms) == 0 || len(in.AvailableTerms) > MaxSuggestionTerms {
		return fmt.Errorf("between 1 and %d terms are required: %w", MaxSuggestionTerms, ErrInvalidInput)
	}
	if candidates := rateSteps(in) * len(in.AvailableTerms); candidates > MaxSuggestionCandidates {
		return fmt.Errorf("%d candidates exceed the limit of %d: %w", candidates, MaxSuggestionCandidates, ErrInvalidInput)
	}
	for _, term := range in.AvailableTerms {
		if term <= 0 || term > MaxTermMonths {
			return fmt.Errorf("term %d outside 1..%d months: %w", term, MaxTermMonths, ErrInvalidInput)
		}
	}
	return nil
}

// rateSteps counts the rates from RateMin to RateMax inclusive.
func rateSteps(in domain.SuggestionInput) int {
	return int(math.Floor((in.RateMax-in.RateMin)/in.RateStep+1e-9)) + 1
}

func (s *SuggestionService) evaluate(sc scenario, in domain.SuggestionInput) []domain.Suggestion {
	steps := rateSteps(in)
	deferment := sc.inputs.Option.EffectiveDeferment()

	out := make([]domain.Suggestion, 0, steps*len(in.AvailableTerms))
	for _, term := range in.AvailableTerms {
		for i := 0; i < steps; i++ {
			rate := formula.Round2(in.RateMin + float64(i)*in.RateStep)
			payment := formula.MonthlyPayment(formula.MonthlyPaymentInput{
				CurrentUPB:           sc.upb,
				InterestRate:         rate,
				Term:                 term,
				Deferment:            deferment,
				LastPaidToResolution: sc.metrics.LastPaidToResolution,
				PerDiem:              sc.metrics.PerDiem,
				DownPayment:          sc.inputs.Option.DownPayment,
				LateFees:             sc.inputs.LateFees,
				LegalFees:            sc.inputs.LegalFees,
			})
			if !isFinite(payment) || payment <= 0 {
				continue
			}
			notePrice := formula.NotePrice(formula.NotePriceInput{MonthlyPayment: payment, Term: term})
			out = append(out, domain.Suggestion{
				Term:           term,
				InterestRate:   rate,
				MonthlyPayment: payment,
				NotePrice:      finite(notePrice),
			})
		}
	}
	score(out, sc.target)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].NotePrice > out[j].NotePrice
	})
	return out
}

// score rates closeness to the requested payment on a 0-10 scale. Without a
// requested payment the note price relative to the best one is used.
func score(suggestions []domain.Suggestion, target float64) {
	if target > 0 {
		for i := range suggestions {
			closeness := 1 - math.Abs(suggestions[i].MonthlyPayment-target)/target
			suggestions[i].Score = formula.Round2(10 * math.Max(closeness, 0))
			suggestions[i].Reason = reason(suggestions[i], target)
		}
		return
	}
	best := 0.0
	for _, sg := range suggestions {
		best = math.Max(best, sg.NotePrice)
	}
	for i := range suggestions {
		if best > 0 {
			suggestions[i].Score = formula.Round2(10 * suggestions[i].NotePrice / best)
		}
		suggestions[i].Reason = "Ranked by note price; no requested payment on file"
	}
}

func reason(sg domain.Suggestion, target float64) string {
	diff := sg.MonthlyPayment - target
	switch {
	case math.Abs(diff) < 0.005:
		return "Matches the requested monthly payment"
	case diff < 0:
		return fmt.Sprintf("$%.2f below the requested monthly payment", -diff)
	default:
		return fmt.Sprintf("$%.2f above the requested monthly payment", diff)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
