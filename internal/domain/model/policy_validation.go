package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

var one = decimal.NewFromInt(1)

// Validate checks the policy for structural and monotonicity errors and
// returns the first violation as a *ConfigurationError.
func (p PartnerBankPolicy) Validate() error {
	checks := []func() error{
		p.validateIdentity,
		p.validateScoring,
		p.validateBehavioral,
		p.validateLending,
		p.validatePricing,
		p.validateCollateral,
		p.validateRecession,
		p.validateAutoApproval,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (p PartnerBankPolicy) validateIdentity() error {
	if p.BankCode == "" {
		return configErr("bankCode", "is required")
	}
	if p.Version < 1 {
		return configErr("version", "must be at least 1, got %d", p.Version)
	}
	return nil
}

func (p PartnerBankPolicy) validateScoring() error {
	sb := p.ScoreBounds
	if sb.Min < 0 || sb.Min >= sb.Max {
		return configErr("scoreBounds", "min %d must be non-negative and below max %d", sb.Min, sb.Max)
	}

	b := p.ClassificationBands
	if !(sb.Max >= b.Excellent && b.Excellent > b.VeryGood && b.VeryGood > b.Good && b.Good > b.Fair && b.Fair >= sb.Min) {
		return configErr("classificationBands", "bands must descend strictly within score bounds")
	}

	w := p.ScoringWeights
	if err := weightSet("scoringWeights", map[string]decimal.Decimal{
		"paymentHistory":    w.PaymentHistory,
		"creditUtilization": w.CreditUtilization,
		"creditAge":         w.CreditAge,
		"creditMix":         w.CreditMix,
		"inquiries":         w.Inquiries,
	}, true); err != nil {
		return err
	}

	pen := p.Penalties
	if pen.RecentDefaults < 0 || pen.MissedPaymentsLast12.Penalty < 0 || pen.LowOnTimeRate.Penalty < 0 || pen.HighInquiries.Penalty < 0 {
		return configErr("penalties", "penalty points must not be negative")
	}
	if pen.MissedPaymentsLast12.Threshold < 0 || pen.HighInquiries.Threshold < 0 {
		return configErr("penalties", "thresholds must not be negative")
	}
	if err := ratio("penalties.lowOnTimeRate.threshold", pen.LowOnTimeRate.Threshold); err != nil {
		return err
	}

	bon := p.Bonuses
	if bon.PerfectPaymentRate < 0 || bon.GoodCreditMix.Points < 0 || bon.HighTransactionVolume.Points < 0 {
		return configErr("bonuses", "bonus points must not be negative")
	}
	if err := ratio("bonuses.goodCreditMix.threshold", bon.GoodCreditMix.Threshold); err != nil {
		return err
	}

	rr := p.RejectionRules
	if rr.MaxMissedPayments12Mo < 0 || rr.MinMonthsSinceLastDelinquency < 0 {
		return configErr("rejectionRules", "limits must not be negative")
	}
	return nil
}

func (p PartnerBankPolicy) validateBehavioral() error {
	bw := p.BehavioralWeights
	if err := weightSet("behavioralWeights", map[string]decimal.Decimal{
		"capacity":   bw.Capacity,
		"capital":    bw.Capital,
		"collateral": bw.Collateral,
		"conditions": bw.Conditions,
		"character":  bw.Character,
	}, true); err != nil {
		return err
	}

	sf := p.SubFactors
	if err := weightSet("subFactors", map[string]decimal.Decimal{
		"cashFlow":              sf.CashFlow,
		"incomeStability":       sf.IncomeStability,
		"discretionarySpending": sf.DiscretionarySpending,
		"budgetingConsistency":  sf.BudgetingConsistency,
		"savingsConsistency":    sf.SavingsConsistency,
	}, false); err != nil {
		return err
	}

	bt := p.BehavioralThresholds
	if !bt.MaxDTI.IsPositive() {
		return configErr("behavioralThresholds.maxDTI", "must be positive")
	}
	if bt.MaxDTIWithCollateral.LessThan(bt.MaxDTI) {
		return configErr("behavioralThresholds.maxDTIWithCollateral", "must not be below maxDTI")
	}
	if err := ratio("behavioralThresholds.minSavingsRate", bt.MinSavingsRate); err != nil {
		return err
	}

	rl := p.RiskLabelThresholds
	hundred := decimal.NewFromInt(100)
	if rl.High.IsNegative() || rl.Low.GreaterThan(hundred) || !rl.Low.GreaterThan(rl.Moderate) || !rl.Moderate.GreaterThan(rl.High) {
		return configErr("riskLabelThresholds", "cut points must satisfy 0 <= high < moderate < low <= 100")
	}
	return nil
}

func (p PartnerBankPolicy) validateLending() error {
	if len(p.LendingPolicy) == 0 {
		return configErr("lendingPolicy", "at least one loan type is required")
	}
	for _, lt := range p.LoanTypes() {
		lp := p.LendingPolicy[lt]
		field := "lendingPolicy." + lt.String()

		st := lp.ScoreThresholds
		if st == (ScoreThresholds{}) {
			return configErr(field+".scoreThresholds", "missing threshold set")
		}
		if !(st.Approve >= st.Conditional && st.Conditional >= st.Review) {
			return configErr(field+".scoreThresholds", "approve %d >= conditional %d >= review %d violated", st.Approve, st.Conditional, st.Review)
		}
		if st.Review < p.ScoreBounds.Min || st.Approve > p.ScoreBounds.Max {
			return configErr(field+".scoreThresholds", "thresholds must lie within score bounds")
		}

		prev := decimal.Zero
		for i := len(valueobject.Classifications) - 1; i >= 0; i-- {
			class := valueobject.Classifications[i]
			capAmt, ok := lp.LoanAmountCaps[class]
			if !ok {
				return configErr(field+".loanAmountCaps", "missing cap for %s", class)
			}
			if capAmt.IsNegative() {
				return configErr(field+".loanAmountCaps", "cap for %s must not be negative", class)
			}
			if capAmt.LessThan(prev) {
				return configErr(field+".loanAmountCaps", "cap for %s is below a worse bucket", class)
			}
			prev = capAmt
		}
		for class, m := range lp.IncomeMultipliers {
			if m.IsNegative() {
				return configErr(field+".incomeMultipliers", "multiplier for %s must not be negative", class)
			}
		}

		if len(lp.TermOptions) == 0 {
			return configErr(field+".termOptions", "at least one term is required")
		}
		for i, t := range lp.TermOptions {
			if t <= 0 || (i > 0 && t <= lp.TermOptions[i-1]) {
				return configErr(field+".termOptions", "terms must be positive and strictly ascending")
			}
		}
	}
	return nil
}

func (p PartnerBankPolicy) validatePricing() error {
	ir := p.InterestRatePolicy
	if ir.BaseRate.IsNegative() {
		return configErr("interestRatePolicy.baseRate", "must not be negative")
	}
	if ir.MaxRate.LessThan(ir.BaseRate) {
		return configErr("interestRatePolicy.maxRate", "must not be below baseRate")
	}
	b := ir.DTIBands
	if !(b.Low.IsPositive() && b.Low.LessThan(b.Moderate) && b.Moderate.LessThan(b.High)) {
		return configErr("interestRatePolicy.dtiBands", "bands must satisfy 0 < low < moderate < high")
	}
	for tier := range ir.RiskTierAdjustments {
		if tier.IsZero() {
			return configErr("interestRatePolicy.riskTierAdjustments", "keys must be LOW, MODERATE or HIGH")
		}
	}
	return nil
}

func (p PartnerBankPolicy) validateCollateral() error {
	c := p.CollateralRules
	for _, class := range c.RequiredForBuckets {
		if _, err := valueobject.ParseClassification(string(class)); err != nil {
			return configErr("collateralRules.requiredForBuckets", "%v", err)
		}
	}
	if c.MinValue.IsNegative() || c.MaxCapIncrease.IsNegative() {
		return configErr("collateralRules", "amounts must not be negative")
	}
	for field, v := range map[string]decimal.Decimal{
		"loanToValueRatio":          c.LoanToValueRatio,
		"qualityThreshold":          c.QualityThreshold,
		"recessionQualityThreshold": c.RecessionQualityThreshold,
		"recessionDiscount":         c.RecessionDiscount,
	} {
		if err := ratio("collateralRules."+field, v); err != nil {
			return err
		}
	}
	return nil
}

func (p PartnerBankPolicy) validateRecession() error {
	r := p.RecessionMode
	if !r.Enabled {
		return nil
	}
	if !r.MaxAmountReduction.IsPositive() || r.MaxAmountReduction.GreaterThan(one) {
		return configErr("recessionMode.maxAmountReduction", "must be in (0, 1]")
	}
	if r.RateIncrease.IsNegative() {
		return configErr("recessionMode.rateIncrease", "must not be negative")
	}
	if r.MaxTerm <= 0 {
		return configErr("recessionMode.maxTerm", "must be positive")
	}
	for _, lt := range p.LoanTypes() {
		if p.LendingPolicy[lt].TermOptions[0] > r.MaxTerm {
			return configErr("recessionMode.maxTerm", "leaves no term options for %s", lt)
		}
	}
	return nil
}

func (p PartnerBankPolicy) validateAutoApproval() error {
	a := p.AutoApproval
	if a.MaxAmount.IsNegative() {
		return configErr("autoApproval.maxAmount", "must not be negative")
	}
	if a.NewCustomerMonths < 0 {
		return configErr("autoApproval.newCustomerMonths", "must not be negative")
	}
	return nil
}

func weightSet(field string, weights map[string]decimal.Decimal, requirePositiveSum bool) error {
	sum := decimal.Zero
	for name, w := range weights {
		if w.IsNegative() {
			return configErr(fmt.Sprintf("%s.%s", field, name), "must not be negative")
		}
		sum = sum.Add(w)
	}
	if requirePositiveSum && !sum.IsPositive() {
		return configErr(field, "weights must not all be zero")
	}
	return nil
}

func ratio(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(one) {
		return configErr(field, "must be within [0, 1], got %s", v)
	}
	return nil
}
