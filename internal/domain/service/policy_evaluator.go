package service

import (
	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// PolicyTerms is what the bank is willing to offer the borrower.
type PolicyTerms struct {
	MaxLoanAmount        decimal.Decimal
	CollateralAddition   decimal.Decimal
	InterestRate         decimal.Decimal
	DTI                  decimal.Decimal
	DTIBand              valueobject.DTIBand
	TermOptions          []int
	CollateralRequired   bool
	CollateralSufficient bool
	RecessionApplied     bool
}

// PolicyEvaluator turns a classification and risk tier into amount, rate
// and term limits.
type PolicyEvaluator struct{}

// NewPolicyEvaluator creates a new policy evaluator.
func NewPolicyEvaluator() *PolicyEvaluator {
	return &PolicyEvaluator{}
}

// EvaluatePolicy applies the loan type's caps, collateral rules, recession
// adjustments and pricing.
func (e *PolicyEvaluator) EvaluatePolicy(
	class valueobject.Classification,
	tier valueobject.RiskTier,
	loanType valueobject.LoanType,
	profile model.BorrowerProfile,
	policy model.PartnerBankPolicy,
) (PolicyTerms, error) {
	lp, err := policy.LoanPolicy(loanType)
	if err != nil {
		return PolicyTerms{}, err
	}
	dti, err := profile.DTI()
	if err != nil {
		return PolicyTerms{}, err
	}
	recession := policy.RecessionMode.Enabled

	// 1. Base amount from the bucket cap, optionally bounded by income.
	base, ok := lp.LoanAmountCaps[class]
	if !ok {
		return PolicyTerms{}, &model.ConfigurationError{
			Field:  "lendingPolicy." + loanType.String() + ".loanAmountCaps",
			Reason: "missing cap for " + class.String(),
		}
	}
	if m, ok := lp.IncomeMultipliers[class]; ok && m.IsPositive() {
		incomeCap := profile.MonthlyIncome.Mul(monthsPerYear).Mul(m)
		base = decimal.Min(base, incomeCap)
	}

	// 2. Collateral only ever adds to the amount.
	addition, sufficient := collateralAddition(profile, policy.CollateralRules, recession)

	// 3. Recession scales the whole amount to the configured fraction.
	maxAmount := base.Add(addition)
	if recession {
		maxAmount = maxAmount.Mul(policy.RecessionMode.MaxAmountReduction)
	}

	// 4. Pricing.
	band := policy.DTIBandFor(dti)
	rate := interestRate(policy, class, tier, band)

	// 5. Terms.
	terms := make([]int, 0, len(lp.TermOptions))
	for _, t := range lp.TermOptions {
		if recession && t > policy.RecessionMode.MaxTerm {
			continue
		}
		terms = append(terms, t)
	}

	return PolicyTerms{
		MaxLoanAmount:        maxAmount.Round(2),
		CollateralAddition:   addition.Round(2),
		InterestRate:         rate,
		DTI:                  dti,
		DTIBand:              band,
		TermOptions:          terms,
		CollateralRequired:   policy.CollateralRules.CollateralRequiredFor(class),
		CollateralSufficient: sufficient,
		RecessionApplied:     recession,
	}, nil
}

func collateralAddition(p model.BorrowerProfile, rules model.CollateralRules, recession bool) (decimal.Decimal, bool) {
	if !p.HasCollateral() || p.CollateralQuality == nil {
		return decimal.Zero, false
	}
	value := *p.CollateralValue
	threshold := rules.QualityThreshold
	if recession {
		value = value.Mul(one.Sub(rules.RecessionDiscount))
		threshold = rules.RecessionQualityThreshold
	}
	if value.LessThan(rules.MinValue) || p.CollateralQuality.LessThan(threshold) {
		return decimal.Zero, false
	}
	addition := value.Mul(rules.LoanToValueRatio)
	if rules.MaxCapIncrease.IsPositive() {
		addition = decimal.Min(addition, rules.MaxCapIncrease)
	}
	return addition, true
}

func interestRate(policy model.PartnerBankPolicy, class valueobject.Classification, tier valueobject.RiskTier, band valueobject.DTIBand) decimal.Decimal {
	ir := policy.InterestRatePolicy
	rate := ir.BaseRate.
		Add(ir.RiskAdjustments[class]).
		Add(ir.DTIAdjustments[band]).
		Add(ir.RiskTierAdjustments[tier])
	if policy.RecessionMode.Enabled {
		rate = rate.Add(policy.RecessionMode.RateIncrease).Add(ir.RecessionAdjustment)
	}
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	if rate.GreaterThan(ir.MaxRate) {
		rate = ir.MaxRate
	}
	return rate.Round(2)
}
