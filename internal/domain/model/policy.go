package model

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// PartnerBankPolicy – versioned, read-only configuration of one partner bank
// ---------------------------------------------------------------------------

// PartnerBankPolicy holds every parameter the engines read. A loaded policy is
// never mutated; publishing a change produces a new Version.
type PartnerBankPolicy struct {
	BankCode  string `json:"bankCode"`
	Version   int    `json:"version"`
	AIEnabled bool   `json:"aiEnabled"`

	ScoreBounds         ScoreBounds         `json:"scoreBounds"`
	ClassificationBands ClassificationBands `json:"classificationBands"`
	ScoringWeights      ScoringWeights      `json:"scoringWeights"`
	Penalties           Penalties           `json:"penalties"`
	Bonuses             Bonuses             `json:"bonuses"`
	RejectionRules      RejectionRules      `json:"rejectionRules"`

	BehavioralWeights    BehavioralWeights    `json:"behavioralWeights"`
	SubFactors           SubFactorWeights     `json:"subFactors"`
	BehavioralThresholds BehavioralThresholds `json:"behavioralThresholds"`
	RiskLabelThresholds  RiskLabelThresholds  `json:"riskLabelThresholds"`

	LendingPolicy      map[valueobject.LoanType]LoanTypePolicy `json:"lendingPolicy"`
	InterestRatePolicy InterestRatePolicy                      `json:"interestRatePolicy"`
	CollateralRules    CollateralRules                         `json:"collateralRules"`
	RecessionMode      RecessionMode                           `json:"recessionMode"`
	AutoApproval       AutoApproval                            `json:"autoApproval"`
}

type ScoreBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ClassificationBands are the minimum scores of each bucket; anything below
// Fair is POOR.
type ClassificationBands struct {
	Excellent int `json:"excellent"`
	VeryGood  int `json:"veryGood"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
}

type ScoringWeights struct {
	PaymentHistory    decimal.Decimal `json:"paymentHistory"`
	CreditUtilization decimal.Decimal `json:"creditUtilization"`
	CreditAge         decimal.Decimal `json:"creditAge"`
	CreditMix         decimal.Decimal `json:"creditMix"`
	Inquiries         decimal.Decimal `json:"inquiries"`
}

// CountPenalty fires when a counter reaches Threshold.
type CountPenalty struct {
	Threshold int `json:"threshold"`
	Penalty   int `json:"penalty"`
}

// RatioPenalty fires when a ratio falls below Threshold.
type RatioPenalty struct {
	Threshold decimal.Decimal `json:"threshold"`
	Penalty   int             `json:"penalty"`
}

type Penalties struct {
	RecentDefaults       int          `json:"recentDefaults"`
	MissedPaymentsLast12 CountPenalty `json:"missedPaymentsLast12"`
	LowOnTimeRate        RatioPenalty `json:"lowOnTimeRate"`
	HighInquiries        CountPenalty `json:"highInquiries"`
}

type RatioBonus struct {
	Threshold decimal.Decimal `json:"threshold"`
	Points    int             `json:"points"`
}

type CountBonus struct {
	Threshold int `json:"threshold"`
	Points    int `json:"points"`
}

type Bonuses struct {
	PerfectPaymentRate    int        `json:"perfectPaymentRate"`
	GoodCreditMix         RatioBonus `json:"goodCreditMix"`
	HighTransactionVolume CountBonus `json:"highTransactionVolume"`
}

type RejectionRules struct {
	AllowConsecutiveMissedPayments bool `json:"allowConsecutiveMissedPayments"`
	MaxMissedPayments12Mo          int  `json:"maxMissedPayments12Mo"`
	MinMonthsSinceLastDelinquency  int  `json:"minMonthsSinceLastDelinquency"`
}

type BehavioralWeights struct {
	Capacity   decimal.Decimal `json:"capacity"`
	Capital    decimal.Decimal `json:"capital"`
	Collateral decimal.Decimal `json:"collateral"`
	Conditions decimal.Decimal `json:"conditions"`
	Character  decimal.Decimal `json:"character"`
}

type SubFactorWeights struct {
	CashFlow              decimal.Decimal `json:"cashFlow"`
	IncomeStability       decimal.Decimal `json:"incomeStability"`
	DiscretionarySpending decimal.Decimal `json:"discretionarySpending"`
	BudgetingConsistency  decimal.Decimal `json:"budgetingConsistency"`
	SavingsConsistency    decimal.Decimal `json:"savingsConsistency"`
}

type BehavioralThresholds struct {
	MaxDTI                   decimal.Decimal `json:"maxDTI"`
	MaxDTIWithCollateral     decimal.Decimal `json:"maxDTIWithCollateral"`
	MinSavingsRate           decimal.Decimal `json:"minSavingsRate"`
	StableEmploymentRequired bool            `json:"stableEmploymentRequired"`
}

// RiskLabelThresholds are cut points on the 0-100 behavioral score.
// Scores at or above Low are low risk, at or above Moderate are moderate
// risk, everything else is high risk. Scores below High are severe.
type RiskLabelThresholds struct {
	Low      decimal.Decimal `json:"low"`
	Moderate decimal.Decimal `json:"moderate"`
	High     decimal.Decimal `json:"high"`
}

type ScoreThresholds struct {
	Approve     int `json:"approve"`
	Conditional int `json:"conditional"`
	Review      int `json:"review"`
}

// LoanTypePolicy holds the per-product limits.
type LoanTypePolicy struct {
	ScoreThresholds   ScoreThresholds                                `json:"scoreThresholds"`
	LoanAmountCaps    map[valueobject.Classification]decimal.Decimal `json:"loanAmountCaps"`
	IncomeMultipliers map[valueobject.Classification]decimal.Decimal `json:"incomeMultipliers,omitempty"`
	TermOptions       []int                                          `json:"termOptions"`
}

type DTIBands struct {
	Low      decimal.Decimal `json:"low"`
	Moderate decimal.Decimal `json:"moderate"`
	High     decimal.Decimal `json:"high"`
}

type InterestRatePolicy struct {
	BaseRate            decimal.Decimal                                `json:"baseRate"`
	MaxRate             decimal.Decimal                                `json:"maxRate"`
	RiskAdjustments     map[valueobject.Classification]decimal.Decimal `json:"riskAdjustments"`
	DTIAdjustments      map[valueobject.DTIBand]decimal.Decimal        `json:"dtiAdjustments"`
	DTIBands            DTIBands                                       `json:"dtiBands"`
	RiskTierAdjustments map[valueobject.RiskTier]decimal.Decimal       `json:"riskTierAdjustments,omitempty"`
	RecessionAdjustment decimal.Decimal                                `json:"recessionAdjustment"`
}

type CollateralRules struct {
	RequiredForBuckets        []valueobject.Classification `json:"requiredForBuckets"`
	MinValue                  decimal.Decimal              `json:"minValue"`
	LoanToValueRatio          decimal.Decimal              `json:"loanToValueRatio"`
	QualityThreshold          decimal.Decimal              `json:"qualityThreshold"`
	RecessionQualityThreshold decimal.Decimal              `json:"recessionQualityThreshold"`
	RecessionDiscount         decimal.Decimal              `json:"recessionDiscount"`
	MaxCapIncrease            decimal.Decimal              `json:"maxCapIncrease"`
}

// RecessionMode tightens lending while enabled. MaxAmountReduction is the
// fraction of the normal maximum that remains available (0.85 keeps 85%).
type RecessionMode struct {
	Enabled            bool            `json:"enabled"`
	RateIncrease       decimal.Decimal `json:"rateIncrease"`
	MaxAmountReduction decimal.Decimal `json:"maxAmountReduction"`
	MaxTerm            int             `json:"maxTerm"`
}

type AutoApproval struct {
	Enabled                  bool                   `json:"enabled"`
	MaxAmount                decimal.Decimal        `json:"maxAmount"`
	NewCustomerMonths        int                    `json:"newCustomerMonths"`
	RequireManualReviewFlags []valueobject.RiskFlag `json:"requireManualReviewFlags"`
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Classify maps a score onto the policy's buckets.
func (p PartnerBankPolicy) Classify(score int) valueobject.Classification {
	b := p.ClassificationBands
	switch {
	case score >= b.Excellent:
		return valueobject.ClassificationExcellent
	case score >= b.VeryGood:
		return valueobject.ClassificationVeryGood
	case score >= b.Good:
		return valueobject.ClassificationGood
	case score >= b.Fair:
		return valueobject.ClassificationFair
	default:
		return valueobject.ClassificationPoor
	}
}

// LoanPolicy returns the limits for a loan type the bank offers.
func (p PartnerBankPolicy) LoanPolicy(t valueobject.LoanType) (LoanTypePolicy, error) {
	lp, ok := p.LendingPolicy[t]
	if !ok {
		return LoanTypePolicy{}, NewValidationError("loanType", "not offered by bank "+p.BankCode)
	}
	return lp, nil
}

// RiskTierFor maps a 0-100 behavioral score onto a tier.
func (p PartnerBankPolicy) RiskTierFor(score decimal.Decimal) valueobject.RiskTier {
	switch {
	case score.GreaterThanOrEqual(p.RiskLabelThresholds.Low):
		return valueobject.RiskTierLow
	case score.GreaterThanOrEqual(p.RiskLabelThresholds.Moderate):
		return valueobject.RiskTierModerate
	default:
		return valueobject.RiskTierHigh
	}
}

// DTIBandFor buckets a debt-to-income ratio.
func (p PartnerBankPolicy) DTIBandFor(dti decimal.Decimal) valueobject.DTIBand {
	b := p.InterestRatePolicy.DTIBands
	switch {
	case dti.LessThanOrEqual(b.Low):
		return valueobject.DTIBandLow
	case dti.LessThanOrEqual(b.Moderate):
		return valueobject.DTIBandModerate
	case dti.LessThanOrEqual(b.High):
		return valueobject.DTIBandHigh
	default:
		return valueobject.DTIBandVeryHigh
	}
}

// LoanTypes returns the offered products in a stable order.
func (p PartnerBankPolicy) LoanTypes() []valueobject.LoanType {
	out := make([]valueobject.LoanType, 0, len(p.LendingPolicy))
	for t := range p.LendingPolicy {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RequiresManualReview reports whether flag blocks automatic approval.
func (a AutoApproval) RequiresManualReview(flag valueobject.RiskFlag) bool {
	for _, f := range a.RequireManualReviewFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// CollateralRequiredFor reports whether the bucket must pledge collateral.
func (c CollateralRules) CollateralRequiredFor(class valueobject.Classification) bool {
	for _, b := range c.RequiredForBuckets {
		if b == class {
			return true
		}
	}
	return false
}
