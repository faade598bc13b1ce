package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

var (
	one              = decimal.NewFromInt(1)
	hundred          = decimal.NewFromInt(100)
	creditAgeHorizon = decimal.NewFromInt(120) // months of history that count as fully seasoned
	inquiryHorizon   = decimal.NewFromInt(10)
)

// consecutiveMissLimit is the run of missed payments that triggers a hard
// reject when the policy forbids consecutive misses.
const consecutiveMissLimit = 2

// ScoringFactor is one normalised input of the score with its weight.
type ScoringFactor struct {
	Name   string
	Weight decimal.Decimal
	Value  decimal.Decimal // 0..1, higher is better
	Impact string
}

// HardReject explains why a borrower must be rejected regardless of score.
type HardReject struct {
	Code   valueobject.RejectionCode
	Reason string
}

// ScoreResult holds the outcome of ComputeScore.
type ScoreResult struct {
	Score          int
	Classification valueobject.Classification
	HardReject     *HardReject
	Factors        []ScoringFactor
	Penalties      []model.Adjustment
	Bonuses        []model.Adjustment
}

// ScoreEngine computes the bounded credit score. It holds no state and is
// safe for concurrent use.
type ScoreEngine struct{}

// NewScoreEngine creates a new score engine.
func NewScoreEngine() *ScoreEngine {
	return &ScoreEngine{}
}

// ComputeScore scores a validated profile against the policy's weights,
// penalties and bonuses and checks the hard-reject rules.
func (e *ScoreEngine) ComputeScore(profile model.BorrowerProfile, policy model.PartnerBankPolicy) (ScoreResult, error) {
	if err := profile.Validate(); err != nil {
		return ScoreResult{}, err
	}

	factors := scoringFactors(profile, policy.ScoringWeights)

	totalWeight := decimal.Zero
	weightedSum := decimal.Zero
	for _, f := range factors {
		totalWeight = totalWeight.Add(f.Weight)
		weightedSum = weightedSum.Add(f.Weight.Mul(f.Value))
	}
	if !totalWeight.IsPositive() {
		return ScoreResult{}, &model.ConfigurationError{Field: "scoringWeights", Reason: "weights must not all be zero"}
	}
	normalized := weightedSum.Div(totalWeight)

	bounds := policy.ScoreBounds
	span := decimal.NewFromInt(int64(bounds.Max - bounds.Min))
	raw := decimal.NewFromInt(int64(bounds.Min)).Add(normalized.Mul(span))

	penalties := applicablePenalties(profile, policy.Penalties)
	bonuses := applicableBonuses(profile, policy.Bonuses)
	for _, p := range penalties {
		raw = raw.Sub(decimal.NewFromInt(int64(p.Points)))
	}
	for _, b := range bonuses {
		raw = raw.Add(decimal.NewFromInt(int64(b.Points)))
	}

	score := clampInt(int(raw.Round(0).IntPart()), bounds.Min, bounds.Max)

	return ScoreResult{
		Score:          score,
		Classification: policy.Classify(score),
		HardReject:     hardReject(profile, policy.RejectionRules),
		Factors:        factors,
		Penalties:      penalties,
		Bonuses:        bonuses,
	}, nil
}

func scoringFactors(p model.BorrowerProfile, w model.ScoringWeights) []ScoringFactor {
	inquiries := one.Sub(decimal.NewFromInt(int64(p.Inquiries)).Div(inquiryHorizon))
	age := decimal.NewFromInt(int64(p.CreditAgeMonths)).Div(creditAgeHorizon)

	factors := []ScoringFactor{
		{Name: "payment_history", Weight: w.PaymentHistory, Value: p.PaymentHistory},
		{Name: "credit_utilization", Weight: w.CreditUtilization, Value: one.Sub(p.CreditUtilization)},
		{Name: "credit_age", Weight: w.CreditAge, Value: clampUnit(age)},
		{Name: "credit_mix", Weight: w.CreditMix, Value: p.CreditMix},
		{Name: "inquiries", Weight: w.Inquiries, Value: clampUnit(inquiries)},
	}
	for i := range factors {
		factors[i].Impact = impactLabel(factors[i].Value)
	}
	return factors
}

func applicablePenalties(p model.BorrowerProfile, pen model.Penalties) []model.Adjustment {
	var out []model.Adjustment
	if p.RecentDefaults > 0 && pen.RecentDefaults > 0 {
		out = append(out, model.Adjustment{Name: "recent_defaults", Points: pen.RecentDefaults * p.RecentDefaults})
	}
	if pen.MissedPaymentsLast12.Penalty > 0 && p.RecentMissedPayments >= pen.MissedPaymentsLast12.Threshold && p.RecentMissedPayments > 0 {
		out = append(out, model.Adjustment{Name: "missed_payments_last_12", Points: pen.MissedPaymentsLast12.Penalty})
	}
	if pen.LowOnTimeRate.Penalty > 0 && p.PaymentHistory.LessThan(pen.LowOnTimeRate.Threshold) {
		out = append(out, model.Adjustment{Name: "low_on_time_rate", Points: pen.LowOnTimeRate.Penalty})
	}
	if pen.HighInquiries.Penalty > 0 && p.Inquiries >= pen.HighInquiries.Threshold && p.Inquiries > 0 {
		out = append(out, model.Adjustment{Name: "high_inquiries", Points: pen.HighInquiries.Penalty})
	}
	return out
}

func applicableBonuses(p model.BorrowerProfile, bon model.Bonuses) []model.Adjustment {
	var out []model.Adjustment
	if bon.PerfectPaymentRate > 0 && p.PaymentHistory.Equal(one) {
		out = append(out, model.Adjustment{Name: "perfect_payment_rate", Points: bon.PerfectPaymentRate})
	}
	if bon.GoodCreditMix.Points > 0 && p.CreditMix.GreaterThanOrEqual(bon.GoodCreditMix.Threshold) {
		out = append(out, model.Adjustment{Name: "good_credit_mix", Points: bon.GoodCreditMix.Points})
	}
	if bon.HighTransactionVolume.Points > 0 && p.MonthlyTransactions >= bon.HighTransactionVolume.Threshold {
		out = append(out, model.Adjustment{Name: "high_transaction_volume", Points: bon.HighTransactionVolume.Points})
	}
	return out
}

// hardReject applies the rejection rules in a fixed order; the first match wins.
func hardReject(p model.BorrowerProfile, rules model.RejectionRules) *HardReject {
	if !rules.AllowConsecutiveMissedPayments && p.ConsecutiveMissedPayments >= consecutiveMissLimit {
		return &HardReject{
			Code:   valueobject.RejectConsecutiveMissedPayments,
			Reason: fmt.Sprintf("%d consecutive missed payments are not allowed", p.ConsecutiveMissedPayments),
		}
	}
	if p.RecentMissedPayments > rules.MaxMissedPayments12Mo {
		return &HardReject{
			Code: valueobject.RejectExcessiveMissedPayments,
			Reason: fmt.Sprintf("missed payments in last 12 months (%d) exceed maximum of %d",
				p.RecentMissedPayments, rules.MaxMissedPayments12Mo),
		}
	}
	if p.LastDelinquencyMonthsAgo != nil && *p.LastDelinquencyMonthsAgo < rules.MinMonthsSinceLastDelinquency {
		return &HardReject{
			Code: valueobject.RejectRecentDelinquency,
			Reason: fmt.Sprintf("last delinquency %d months ago is within the %d month exclusion window",
				*p.LastDelinquencyMonthsAgo, rules.MinMonthsSinceLastDelinquency),
		}
	}
	return nil
}

func impactLabel(v decimal.Decimal) string {
	switch {
	case v.GreaterThanOrEqual(decimal.NewFromFloat(0.8)):
		return "POSITIVE"
	case v.GreaterThanOrEqual(decimal.NewFromFloat(0.5)):
		return "NEUTRAL"
	default:
		return "NEGATIVE"
	}
}

func clampUnit(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(one) {
		return one
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
