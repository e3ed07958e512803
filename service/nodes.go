package service

import (
	"loan-workout/domain"
	"loan-workout/formula"
)

// Inputs: raw values read from the snapshot, the request and the operator
// overrides. They are the leaves of the metric graph.
const (
	KeyPurchaseDate    Key = "purchase_date"
	KeyExpirationDate  Key = "expiration_date"
	KeyNextDueDate     Key = "next_due_date"
	KeyLastPaidDate    Key = "last_paid_date"
	KeyServicer        Key = "servicer"
	KeyOriginalRate    Key = "original_interest_rate"
	KeyPerDiemRate     Key = "per_diem_rate"
	KeyCurrentUPB      Key = "current_upb"
	KeySeniorUPB       Key = "senior_upb"
	KeyPurchasePrice   Key = "purchase_price"
	KeyFairMarketValue Key = "fair_market_value"
	KeyLegalFees       Key = "legal_fees"
	KeyLateFees        Key = "late_fees"
	KeyPayoffTotal     Key = "payoff_total"
	KeyDownPayment     Key = "down_payment"
	KeyTerm            Key = "term"
	KeyOptionRate      Key = "option_interest_rate"
	KeyDeferment       Key = "deferment"
)

// Derived metrics.
const (
	KeyPurchaseToResolution Key = "purchase_to_resolution"
	KeyLastPaidToResolution Key = "last_paid_to_resolution"
	KeyMonthsDelinquent     Key = "months_delinquent"
	KeyPerDiem              Key = "per_diem"
	KeyAccruedInterest      Key = "accrued_interest"
	KeyTotalArrears         Key = "total_arrears"
	KeyNewUPB               Key = "new_upb"
	KeyTotalDebt            Key = "total_debt"
	KeyTotalExpenses        Key = "total_expenses"
	KeyMonthlyPayment       Key = "monthly_payment"
	KeyNotePrice            Key = "note_price"
	KeyNetProfit            Key = "net_profit"
	KeyAPY                  Key = "apy"
	KeyCLTV                 Key = "cltv"
	KeyITV                  Key = "itv"
	KeyEquityCoverage       Key = "equity_coverage"
	KeyUPBPurchaseRatio     Key = "upb_purchase_ratio"
	KeyFirstPaymentDue      Key = "first_payment_due"
	KeyDiscrepancy          Key = "discrepancy"
)

// state is everything a pass reads and writes. The engine is its only writer.
type state struct {
	loan    domain.LoanSnapshot
	request domain.ResolutionRequest
	inputs  domain.EditableInputs
	metrics domain.DerivedMetrics

	legacyArrears bool
}

func (s *state) currentUPB() float64 {
	if s.inputs.CurrentUPB != 0 {
		return s.inputs.CurrentUPB
	}
	return s.loan.UnpaidPrincipal
}

func (s *state) purchasePrice() float64 {
	if s.inputs.PurchasePrice != 0 {
		return s.inputs.PurchasePrice
	}
	return s.loan.PurchasePrice
}

func (s *state) seniorUPB() float64 {
	if s.inputs.UseRequestedSeniorUPB {
		return s.request.RequestedSeniorUPB
	}
	return s.loan.SeniorUnpaidPrincipal
}

var inputReaders = map[Key]func(s *state) any{
	KeyPurchaseDate:    func(s *state) any { return s.loan.PurchaseDate },
	KeyExpirationDate:  func(s *state) any { return s.request.PayoffDate },
	KeyNextDueDate:     func(s *state) any { return s.loan.NextDueDate },
	KeyLastPaidDate:    func(s *state) any { return s.loan.LastPaidDate },
	KeyServicer:        func(s *state) any { return s.loan.Servicer },
	KeyOriginalRate:    func(s *state) any { return s.loan.OriginalInterestRate },
	KeyPerDiemRate:     func(s *state) any { return s.inputs.PerDiemRate },
	KeyCurrentUPB:      func(s *state) any { return s.currentUPB() },
	KeySeniorUPB:       func(s *state) any { return s.seniorUPB() },
	KeyPurchasePrice:   func(s *state) any { return s.purchasePrice() },
	KeyFairMarketValue: func(s *state) any { return s.loan.FairMarketValue },
	KeyLegalFees:       func(s *state) any { return s.inputs.LegalFees },
	KeyLateFees:        func(s *state) any { return s.inputs.LateFees },
	KeyPayoffTotal:     func(s *state) any { return s.request.PayoffTotal },
	KeyDownPayment:     func(s *state) any { return s.inputs.Option.DownPayment },
	KeyTerm:            func(s *state) any { return s.inputs.Option.Term },
	KeyOptionRate:      func(s *state) any { return s.inputs.Option.InterestRate },
	KeyDeferment:       func(s *state) any { return s.inputs.Option.EffectiveDeferment() },
}

func inputKeys() []Key {
	keys := make([]Key, 0, len(inputReaders))
	for k := range inputReaders {
		keys = append(keys, k)
	}
	return keys
}

func readInputs(s *state) map[Key]any {
	values := make(map[Key]any, len(inputReaders))
	for k, read := range inputReaders {
		values[k] = read(s)
	}
	return values
}

func changedInputs(before, after map[Key]any) []Key {
	var changed []Key
	for k, v := range after {
		if before[k] != v {
			changed = append(changed, k)
		}
	}
	return changed
}

func metricNodes() []node {
	return []node{
		metricNode(KeyPurchaseToResolution, []Key{KeyPurchaseDate, KeyExpirationDate},
			func(m *domain.DerivedMetrics) *float64 { return &m.PurchaseToResolution },
			func(s *state) float64 {
				return formula.PurchaseToResolution(s.loan.PurchaseDate, s.request.PayoffDate)
			}),
		metricNode(KeyLastPaidToResolution, []Key{KeyNextDueDate, KeyExpirationDate, KeyLastPaidDate},
			func(m *domain.DerivedMetrics) *float64 { return &m.LastPaidToResolution },
			func(s *state) float64 {
				return formula.LastPaidToResolution(s.loan.NextDueDate, s.request.PayoffDate, s.loan.LastPaidDate)
			}),
		metricNode(KeyMonthsDelinquent, []Key{KeyNextDueDate, KeyExpirationDate},
			func(m *domain.DerivedMetrics) *float64 { return &m.MonthsDelinquent },
			func(s *state) float64 {
				return formula.MonthsDelinquent(s.loan.NextDueDate, s.request.PayoffDate)
			}),
		metricNode(KeyPerDiem, []Key{KeyOriginalRate, KeyPerDiemRate, KeyCurrentUPB, KeyServicer},
			func(m *domain.DerivedMetrics) *float64 { return &m.PerDiem },
			func(s *state) float64 {
				return formula.PerDiem(formula.PerDiemInput{
					OriginalRate: s.loan.OriginalInterestRate,
					OverrideRate: s.inputs.PerDiemRate,
					UseOverride:  s.inputs.PerDiemRate != 0,
					UPB:          s.currentUPB(),
					Servicer:     s.loan.Servicer,
				})
			}),
		metricNode(KeyAccruedInterest, []Key{KeyPerDiem, KeyLastPaidToResolution},
			func(m *domain.DerivedMetrics) *float64 { return &m.AccruedInterest },
			func(s *state) float64 {
				return formula.AccruedInterest(formula.AccruedInterestInput{
					PerDiem:              s.metrics.PerDiem,
					LastPaidToResolution: s.metrics.LastPaidToResolution,
				})
			}),
		metricNode(KeyTotalArrears,
			[]Key{KeyDownPayment, KeyLastPaidToResolution, KeyPerDiem, KeyDeferment, KeyLateFees, KeyLegalFees},
			func(m *domain.DerivedMetrics) *float64 { return &m.TotalArrears },
			func(s *state) float64 {
				return formula.TotalArrears(formula.TotalArrearsInput{
					DownPayment:          s.inputs.Option.DownPayment,
					LastPaidToResolution: s.metrics.LastPaidToResolution,
					PerDiem:              s.metrics.PerDiem,
					Deferment:            s.inputs.Option.EffectiveDeferment(),
					LateFees:             s.inputs.LateFees,
					LegalFees:            s.inputs.LegalFees,
					LegacyFallthrough:    s.legacyArrears,
				})
			}),
		metricNode(KeyNewUPB, []Key{KeyTotalArrears, KeyCurrentUPB, KeyDownPayment, KeyDeferment},
			func(m *domain.DerivedMetrics) *float64 { return &m.NewUPB },
			func(s *state) float64 {
				return formula.NewUPB(formula.NewUPBInput{
					TotalArrears: s.metrics.TotalArrears,
					CurrentUPB:   s.currentUPB(),
					DownPayment:  s.inputs.Option.DownPayment,
					Deferment:    s.inputs.Option.EffectiveDeferment(),
				})
			}),
		metricNode(KeyTotalDebt, []Key{KeyAccruedInterest, KeyLegalFees, KeyLateFees, KeyCurrentUPB},
			func(m *domain.DerivedMetrics) *float64 { return &m.TotalDebt },
			func(s *state) float64 {
				return formula.TotalDebt(formula.TotalDebtInput{
					AccruedInterest: s.metrics.AccruedInterest,
					LegalFees:       s.inputs.LegalFees,
					LateFees:        s.inputs.LateFees,
					CurrentUPB:      s.currentUPB(),
				})
			}),
		metricNode(KeyTotalExpenses, []Key{KeyPurchasePrice, KeyLegalFees},
			func(m *domain.DerivedMetrics) *float64 { return &m.TotalExpenses },
			func(s *state) float64 {
				return formula.TotalExpenses(formula.TotalExpensesInput{
					PurchasePrice: s.purchasePrice(),
					LegalFees:     s.inputs.LegalFees,
				})
			}),
		metricNode(KeyMonthlyPayment,
			[]Key{KeyCurrentUPB, KeyOptionRate, KeyTerm, KeyDeferment, KeyLastPaidToResolution,
				KeyPerDiem, KeyDownPayment, KeyLateFees, KeyLegalFees},
			func(m *domain.DerivedMetrics) *float64 { return &m.MonthlyPayment },
			func(s *state) float64 {
				return formula.MonthlyPayment(formula.MonthlyPaymentInput{
					CurrentUPB:           s.currentUPB(),
					InterestRate:         s.inputs.Option.InterestRate,
					Term:                 s.inputs.Option.Term,
					Deferment:            s.inputs.Option.EffectiveDeferment(),
					LastPaidToResolution: s.metrics.LastPaidToResolution,
					PerDiem:              s.metrics.PerDiem,
					DownPayment:          s.inputs.Option.DownPayment,
					LateFees:             s.inputs.LateFees,
					LegalFees:            s.inputs.LegalFees,
				})
			}),
		metricNode(KeyNotePrice, []Key{KeyMonthlyPayment, KeyTerm},
			func(m *domain.DerivedMetrics) *float64 { return &m.NotePrice },
			func(s *state) float64 {
				return formula.NotePrice(formula.NotePriceInput{
					MonthlyPayment: s.metrics.MonthlyPayment,
					Term:           s.inputs.Option.Term,
				})
			}),
		metricNode(KeyNetProfit, []Key{KeyNotePrice, KeyPurchaseToResolution, KeyTotalExpenses, KeyDownPayment},
			func(m *domain.DerivedMetrics) *float64 { return &m.NetProfit },
			func(s *state) float64 {
				return formula.NetProfit(formula.NetProfitInput{
					NotePrice:            s.metrics.NotePrice,
					PurchaseToResolution: s.metrics.PurchaseToResolution,
					TotalExpenses:        s.metrics.TotalExpenses,
					DownPayment:          s.inputs.Option.DownPayment,
				})
			}),
		metricNode(KeyAPY, []Key{KeyNetProfit, KeyTotalExpenses, KeyPurchaseToResolution},
			func(m *domain.DerivedMetrics) *float64 { return &m.APY },
			func(s *state) float64 {
				return formula.APY(formula.APYInput{
					NetProfit:            s.metrics.NetProfit,
					TotalExpenses:        s.metrics.TotalExpenses,
					PurchaseToResolution: s.metrics.PurchaseToResolution,
				})
			}),
		metricNode(KeyCLTV, []Key{KeySeniorUPB, KeyTotalDebt, KeyFairMarketValue},
			func(m *domain.DerivedMetrics) *float64 { return &m.CLTV },
			func(s *state) float64 {
				return formula.CLTV(formula.CLTVInput{
					SeniorUPB:       s.seniorUPB(),
					TotalDebt:       s.metrics.TotalDebt,
					FairMarketValue: s.loan.FairMarketValue,
				})
			}),
		metricNode(KeyITV, []Key{KeySeniorUPB, KeyNotePrice, KeyFairMarketValue},
			func(m *domain.DerivedMetrics) *float64 { return &m.ITV },
			func(s *state) float64 {
				return formula.ITV(formula.ITVInput{
					SeniorUPB:       s.seniorUPB(),
					NotePrice:       s.metrics.NotePrice,
					FairMarketValue: s.loan.FairMarketValue,
				})
			}),
		metricNode(KeyEquityCoverage, []Key{KeySeniorUPB, KeyFairMarketValue, KeyTotalDebt},
			func(m *domain.DerivedMetrics) *float64 { return &m.EquityCoverage },
			func(s *state) float64 {
				return formula.EquityCoverage(formula.EquityCoverageInput{
					SeniorUPB:       s.seniorUPB(),
					FairMarketValue: s.loan.FairMarketValue,
					TotalDebt:       s.metrics.TotalDebt,
				})
			}),
		metricNode(KeyUPBPurchaseRatio, []Key{KeyCurrentUPB, KeyPurchasePrice},
			func(m *domain.DerivedMetrics) *float64 { return &m.UPBPurchaseRatio },
			func(s *state) float64 {
				return formula.UPBPurchaseRatio(formula.UPBPurchaseRatioInput{
					UPB:           s.currentUPB(),
					PurchasePrice: s.purchasePrice(),
				})
			}),
		firstPaymentDueNode(),
		metricNode(KeyDiscrepancy,
			[]Key{KeyPayoffTotal, KeyTotalDebt, KeyLateFees, KeyLegalFees, KeyTerm, KeyOptionRate},
			func(m *domain.DerivedMetrics) *float64 { return &m.Discrepancy },
			func(s *state) float64 {
				if s.inputs.Option.Term == 0 || s.inputs.Option.InterestRate == 0 {
					return 0
				}
				return formula.Round2(s.request.PayoffTotal - s.metrics.TotalDebt)
			}),
	}
}

func firstPaymentDueNode() node {
	return node{
		key:  KeyFirstPaymentDue,
		deps: []Key{KeyDownPayment, KeyExpirationDate},
		read: func(s *state) any { return s.metrics.FirstPaymentDue },
		apply: func(s *state) bool {
			due := formula.FirstPaymentDueDate(formula.FirstPaymentDueInput{
				DownPayment:    s.inputs.Option.DownPayment,
				ExpirationDate: s.request.PayoffDate,
			})
			if due.Equal(s.metrics.FirstPaymentDue) {
				return false
			}
			s.metrics.FirstPaymentDue = due
			return true
		},
	}
}
