package service

import (
	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

var (
	activeLoanHorizon   = decimal.NewFromInt(5)
	missedPaymentWindow = decimal.NewFromInt(6)
	monthsPerYear       = decimal.NewFromInt(12)
	two                 = decimal.NewFromInt(2)
)

// BehavioralResult holds the outcome of the five C's assessment.
type BehavioralResult struct {
	Score                  decimal.Decimal // 0..100
	RiskTier               valueobject.RiskTier
	RiskTierLabel          string
	DefaultRiskEstimate    decimal.Decimal // 0..1
	EmploymentFloorApplied bool
	Components             map[string]decimal.Decimal
}

// BehavioralEngine scores capacity, capital, collateral, conditions and
// character. Stateless and safe for concurrent use.
type BehavioralEngine struct{}

// NewBehavioralEngine creates a new behavioral engine.
func NewBehavioralEngine() *BehavioralEngine {
	return &BehavioralEngine{}
}

type weighted struct {
	value  decimal.Decimal
	weight decimal.Decimal
}

// ComputeBehavioral derives the behavioral score and risk tier.
func (e *BehavioralEngine) ComputeBehavioral(profile model.BorrowerProfile, policy model.PartnerBankPolicy) (BehavioralResult, error) {
	if err := profile.Validate(); err != nil {
		return BehavioralResult{}, err
	}
	dti, err := profile.DTI()
	if err != nil {
		return BehavioralResult{}, err
	}

	sf := policy.SubFactors
	th := policy.BehavioralThresholds

	// Sub-factors, each in [0,1].
	cashFlow := clampUnit(profile.MonthlyIncome.Sub(profile.TotalDebt).Div(profile.MonthlyIncome))
	incomeStability := profile.EmploymentStatus.Stability()
	discretionary := clampUnit(one.Sub(profile.CreditUtilization))
	budgeting := profile.PaymentHistory
	savings := savingsConsistency(profile.SavingsRate(), th.MinSavingsRate)

	capacity := weightedMean(weighted{cashFlow, sf.CashFlow}, weighted{incomeStability, sf.IncomeStability})
	if dti.GreaterThan(th.MaxDTI) {
		capacity = capacity.Div(two)
	}
	capital := weightedMean(weighted{savings, sf.SavingsConsistency}, weighted{discretionary, sf.DiscretionarySpending})
	collateral := collateralStrength(profile, policy.CollateralRules.LoanToValueRatio)
	loadFactor := one.Sub(clampUnit(decimal.NewFromInt(int64(profile.ActiveLoans)).Div(activeLoanHorizon)))
	conditions := weightedMean(weighted{incomeStability, one}, weighted{loadFactor, one})
	missRecord := one.Sub(clampUnit(decimal.NewFromInt(int64(profile.RecentMissedPayments)).Div(missedPaymentWindow)))
	// Budgeting takes its weight; the missed-payment record takes the rest.
	wbc := clampUnit(sf.BudgetingConsistency)
	character := weightedMean(weighted{budgeting, wbc}, weighted{missRecord, one.Sub(wbc)})

	bw := policy.BehavioralWeights
	score := weightedMean(
		weighted{capacity, bw.Capacity},
		weighted{capital, bw.Capital},
		weighted{collateral, bw.Collateral},
		weighted{conditions, bw.Conditions},
		weighted{character, bw.Character},
	).Mul(hundred).Round(2)

	tier := policy.RiskTierFor(score)
	floorApplied := false
	if th.StableEmploymentRequired && !profile.EmploymentStatus.IsStable() && tier.Equal(valueobject.RiskTierLow) {
		tier = valueobject.RiskTierModerate
		floorApplied = true
	}

	return BehavioralResult{
		Score:                  score,
		RiskTier:               tier,
		RiskTierLabel:          tier.Label(),
		DefaultRiskEstimate:    hundred.Sub(score).Div(hundred).Round(4),
		EmploymentFloorApplied: floorApplied,
		Components: map[string]decimal.Decimal{
			"capacity":   capacity.Round(4),
			"capital":    capital.Round(4),
			"collateral": collateral.Round(4),
			"conditions": conditions.Round(4),
			"character":  character.Round(4),
		},
	}, nil
}

func savingsConsistency(rate, minRate decimal.Decimal) decimal.Decimal {
	if !minRate.IsPositive() {
		if rate.IsPositive() {
			return one
		}
		return decimal.Zero
	}
	return clampUnit(rate.Div(minRate))
}

// collateralStrength scales pledged quality by how much of a year's income
// the lendable collateral value covers.
func collateralStrength(p model.BorrowerProfile, ltv decimal.Decimal) decimal.Decimal {
	if !p.HasCollateral() || p.CollateralQuality == nil {
		return decimal.Zero
	}
	annualIncome := p.MonthlyIncome.Mul(monthsPerYear)
	coverage := clampUnit(p.CollateralValue.Mul(ltv).Div(annualIncome))
	return p.CollateralQuality.Mul(coverage)
}

// weightedMean falls back to the plain mean when every weight is zero.
func weightedMean(items ...weighted) decimal.Decimal {
	if len(items) == 0 {
		return decimal.Zero
	}
	sum, total := decimal.Zero, decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.value.Mul(it.weight))
		total = total.Add(it.weight)
	}
	if total.IsPositive() {
		return sum.Div(total)
	}
	plain := decimal.Zero
	for _, it := range items {
		plain = plain.Add(it.value)
	}
	return plain.Div(decimal.NewFromInt(int64(len(items))))
}
