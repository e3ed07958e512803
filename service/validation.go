package service

import (
	"fmt"
	"math"

	"loan-workout/domain"
)

// validateInputs rejects operator values no workout can carry. Fees may be
// negative since discrepancies are folded into them.
func validateInputs(in domain.EditableInputs) error {
	nonNegative := map[string]float64{
		"purchase price": in.PurchasePrice,
		"current UPB":    in.CurrentUPB,
		"per diem rate":  in.PerDiemRate,
		"down payment":   in.Option.DownPayment,
		"deferment":      in.Option.Deferment.Amount,
		"deferment 2":    in.Option.Deferment.Amount2,
	}
	for name, v := range nonNegative {
		if err := checkAmount(name, v); err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("%s must not be negative: %w", name, ErrInvalidInput)
		}
	}
	for name, v := range map[string]float64{
		"legal fees":   in.LegalFees,
		"late fees":    in.LateFees,
		"past workout": in.PastWorkout,
	} {
		if err := checkAmount(name, v); err != nil {
			return err
		}
	}

	if in.Option.Term < 0 || in.Option.Term > MaxTermMonths {
		return fmt.Errorf("term must be between 0 and %d months: %w", MaxTermMonths, ErrInvalidInput)
	}
	rate := in.Option.InterestRate
	if math.IsNaN(rate) || rate < 0 || rate > MaxInterestRate {
		return fmt.Errorf("interest rate must be between 0 and %.0f%%: %w", MaxInterestRate, ErrInvalidInput)
	}
	return nil
}

func checkAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > MaxMoneyAmount {
		return fmt.Errorf("%s exceeds the allowed range of $%.2f: %w", name, MaxMoneyAmount, ErrInvalidInput)
	}
	return nil
}

// finite maps values that cannot be stored or encoded to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
