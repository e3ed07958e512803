package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveDeferment(t *testing.T) {
	opt := OptionInputs{Deferment: Deferment{Variant: DefermentBalloon, Amount: 3000}}
	assert.Equal(t, Deferment{Variant: DefermentNone}, opt.EffectiveDeferment())

	opt.HasDeferment = true
	assert.Equal(t, Deferment{Variant: DefermentBalloon, Amount: 3000}, opt.EffectiveDeferment())

	opt.Deferment.Variant = ""
	assert.Equal(t, DefermentNone, opt.EffectiveDeferment().Variant)
	assert.Equal(t, 3000.0, opt.EffectiveDeferment().Amount)
}

func TestInputsPatchApply(t *testing.T) {
	in := EditableInputs{LegalFees: 1000, LateFees: 500, Option: OptionInputs{Term: 360, InterestRate: 6}}
	legal := 1200.0
	term := 240
	split := DefermentSplit
	amount2 := 400.0

	InputsPatch{
		LegalFees: &legal,
		Option:    &OptionPatch{Term: &term, DefermentVariant: &split, DefermentAmount2: &amount2},
	}.Apply(&in)

	assert.Equal(t, 1200.0, in.LegalFees)
	assert.Equal(t, 500.0, in.LateFees)
	assert.Equal(t, 240, in.Option.Term)
	assert.Equal(t, 6.0, in.Option.InterestRate)
	assert.Equal(t, split, in.Option.Deferment.Variant)
	assert.Equal(t, 400.0, in.Option.Deferment.Amount2)
	assert.False(t, in.Option.HasDeferment)
}
