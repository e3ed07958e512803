package domain

type DefermentVariant string

const (
	DefermentNone    DefermentVariant = "none"
	DefermentForgive DefermentVariant = "forgive"
	DefermentBalloon DefermentVariant = "balloon"
	DefermentSplit   DefermentVariant = "split"
)

// Deferment carries the variant and its legs. For the split variant Amount is
// the balloon leg and Amount2 the forgiven leg; other variants use Amount only.
type Deferment struct {
	Variant DefermentVariant `json:"variant"`
	Amount  float64          `json:"amount"`
	Amount2 float64          `json:"amount2"`
}

type OptionInputs struct {
	Term         int       `json:"term"`
	InterestRate float64   `json:"interest_rate"`
	DownPayment  float64   `json:"down_payment"`
	HasDeferment bool      `json:"has_deferment"`
	Deferment    Deferment `json:"deferment"`
	Comments     string    `json:"comments"`
}

// EffectiveDeferment is the deferment the formulas see: nothing at all unless
// the option has the deferment flag set.
func (o OptionInputs) EffectiveDeferment() Deferment {
	if !o.HasDeferment {
		return Deferment{Variant: DefermentNone}
	}
	if o.Deferment.Variant == "" {
		return Deferment{Variant: DefermentNone, Amount: o.Deferment.Amount, Amount2: o.Deferment.Amount2}
	}
	return o.Deferment
}

// EditableInputs are the operator-owned override fields. Zero overrides fall
// back to the loan snapshot.
type EditableInputs struct {
	PurchasePrice         float64      `json:"purchase_price"`
	CurrentUPB            float64      `json:"current_upb"`
	PerDiemRate           float64      `json:"per_diem_rate"`
	UseRequestedSeniorUPB bool         `json:"use_requested_senior_upb"`
	LegalFees             float64      `json:"legal_fees"`
	LateFees              float64      `json:"late_fees"`
	PastWorkout           float64      `json:"past_workout"`
	Option                OptionInputs `json:"option"`
}

// InputsPatch is a partial edit of EditableInputs; nil fields are left alone.
type InputsPatch struct {
	PurchasePrice         *float64     `json:"purchase_price,omitempty"`
	CurrentUPB            *float64     `json:"current_upb,omitempty"`
	PerDiemRate           *float64     `json:"per_diem_rate,omitempty"`
	UseRequestedSeniorUPB *bool        `json:"use_requested_senior_upb,omitempty"`
	LegalFees             *float64     `json:"legal_fees,omitempty"`
	LateFees              *float64     `json:"late_fees,omitempty"`
	PastWorkout           *float64     `json:"past_workout,omitempty"`
	Option                *OptionPatch `json:"option,omitempty"`
}

type OptionPatch struct {
	Term             *int              `json:"term,omitempty"`
	InterestRate     *float64          `json:"interest_rate,omitempty"`
	DownPayment      *float64          `json:"down_payment,omitempty"`
	HasDeferment     *bool             `json:"has_deferment,omitempty"`
	DefermentVariant *DefermentVariant `json:"deferment_variant,omitempty"`
	DefermentAmount  *float64          `json:"deferment_amount,omitempty"`
	DefermentAmount2 *float64          `json:"deferment_amount2,omitempty"`
	Comments         *string           `json:"comments,omitempty"`
}

func (p InputsPatch) Apply(in *EditableInputs) {
	setFloat(&in.PurchasePrice, p.PurchasePrice)
	setFloat(&in.CurrentUPB, p.CurrentUPB)
	setFloat(&in.PerDiemRate, p.PerDiemRate)
	setFloat(&in.LegalFees, p.LegalFees)
	setFloat(&in.LateFees, p.LateFees)
	setFloat(&in.PastWorkout, p.PastWorkout)
	if p.UseRequestedSeniorUPB != nil {
		in.UseRequestedSeniorUPB = *p.UseRequestedSeniorUPB
	}
	if p.Option == nil {
		return
	}
	o := p.Option
	if o.Term != nil {
		in.Option.Term = *o.Term
	}
	setFloat(&in.Option.InterestRate, o.InterestRate)
	setFloat(&in.Option.DownPayment, o.DownPayment)
	if o.HasDeferment != nil {
		in.Option.HasDeferment = *o.HasDeferment
	}
	if o.DefermentVariant != nil {
		in.Option.Deferment.Variant = *o.DefermentVariant
	}
	setFloat(&in.Option.Deferment.Amount, o.DefermentAmount)
	setFloat(&in.Option.Deferment.Amount2, o.DefermentAmount2)
	if o.Comments != nil {
		in.Option.Comments = *o.Comments
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
