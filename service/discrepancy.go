package service

import (
	"fmt"
	"math"

	"loan-workout/domain"
)

// Resolve routes the discrepancy between the requested payoff and the
// computed total debt. Applying it to a fee moves the amount into that fee;
// disregarding only clears it until an upstream input changes.
//
// Called from inside a pass, the action is queued like an Edit and the
// amount is read once the work queued ahead of it has run. If that work
// already closed the gap, the action does nothing.
func (e *Engine) Resolve(action domain.DiscrepancyAction) error {
	if !e.Ready() {
		return ErrNotReady
	}

	var apply func(in *domain.EditableInputs, amount float64)
	switch action {
	case domain.ApplyToLegalFees:
		apply = func(in *domain.EditableInputs, amount float64) { in.LegalFees += amount }
	case domain.ApplyToLateFees:
		apply = func(in *domain.EditableInputs, amount float64) { in.LateFees += amount }
	case domain.DisregardDiscrepancy:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if !openDiscrepancy(e.state.metrics.Discrepancy) {
		return ErrNoDiscrepancy
	}

	e.schedule(func() {
		amount := e.state.metrics.Discrepancy
		if !openDiscrepancy(amount) {
			return
		}
		if apply == nil {
			e.clearDiscrepancy()
			return
		}
		e.state.metrics.Discrepancy = 0
		e.mutate(func(s *state) { apply(&s.inputs, amount) }, nil)
	})
	return nil
}

func openDiscrepancy(amount float64) bool {
	return amount != 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// clearDiscrepancy zeroes the field without touching any input and reports
// it as a pass over that one metric.
func (e *Engine) clearDiscrepancy() {
	e.state.metrics.Discrepancy = 0
	n := e.graph.order[e.graph.index[KeyDiscrepancy]]
	e.trace(n, true)
	e.notify(Pass{Recomputed: []Key{KeyDiscrepancy}, Changed: []Key{KeyDiscrepancy}})
}
