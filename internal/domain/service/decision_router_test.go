package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/model/modeltest"
	"github.com/aman3729/credit-score/internal/domain/service"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newPipeline() *service.DecisionPipeline {
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("decision-%d", n)
	}
	return service.NewDecisionPipeline(service.NewDecisionRouter(ids, func() time.Time { return fixedNow }))
}

func personal(p model.BorrowerProfile, policy model.PartnerBankPolicy) service.EvaluationRequest {
	return service.EvaluationRequest{Profile: p, Policy: policy, LoanType: valueobject.LoanTypePersonal}
}

func TestRoute_ApprovesStrongBorrower(t *testing.T) {
	d, err := newPipeline().Evaluate(personal(modeltest.StrongProfile("b-1"), modeltest.Policy()))
	require.NoError(t, err)

	assert.Equal(t, valueobject.DecisionApprove, d.Decision())
	assert.Equal(t, 842, d.Score())
	assert.Equal(t, valueobject.ClassificationExcellent, d.Classification())
	assert.Equal(t, valueobject.RiskTierLow, d.RiskTier())
	assert.False(t, d.IsManual())
	assert.Equal(t, model.SystemActor, d.DecisionBy())
	assert.Equal(t, fixedNow, d.Timestamp())

	details, ok := d.LoanDetails()
	require.True(t, ok)
	assert.True(t, details.Amount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, 60, details.Term)
	assert.True(t, details.InterestRate.Equal(decimal.NewFromInt(9)))

	rec := d.Record()
	assert.Equal(t, valueobject.DTIBandLow, rec.DTIRating)
	assert.Equal(t, "Low Risk", rec.RiskTierLabel)
	assert.Equal(t, model.EngineVersion, rec.EngineVersion)
	assert.Equal(t, 1, rec.PolicyVersion)
	assert.Empty(t, rec.RiskFlags)
}

func TestRoute_RequestedAmountAndTerm(t *testing.T) {
	t.Run("within limits", func(t *testing.T) {
		req := personal(modeltest.StrongProfile("b-2"), modeltest.Policy())
		req.RequestedAmount = modeltest.DecPtr(20000)
		req.RequestedTerm = 24

		d, err := newPipeline().Evaluate(req)
		require.NoError(t, err)
		details, ok := d.LoanDetails()
		require.True(t, ok)
		assert.True(t, details.Amount.Equal(decimal.NewFromInt(20000)))
		assert.Equal(t, 24, details.Term)
	})

	t.Run("above maximum is capped", func(t *testing.T) {
		req := personal(modeltest.StrongProfile("b-3"), modeltest.Policy())
		req.RequestedAmount = modeltest.DecPtr(80000)
		req.RequestedTerm = 18

		d, err := newPipeline().Evaluate(req)
		require.NoError(t, err)
		details, ok := d.LoanDetails()
		require.True(t, ok)
		assert.True(t, details.Amount.Equal(decimal.NewFromInt(50000)))
		assert.Equal(t, 60, details.Term)
		assert.Contains(t, d.Reasons()[1], "capped at policy maximum")
	})
}

func TestRoute_HardRejectOnMissedPayments(t *testing.T) {
	p := modeltest.StrongProfile("b-4")
	p.RecentMissedPayments = 4

	d, err := newPipeline().Evaluate(personal(p, modeltest.Policy()))
	require.NoError(t, err)

	assert.Equal(t, valueobject.DecisionReject, d.Decision())
	assert.Equal(t, valueobject.RejectExcessiveMissedPayments, d.RejectionCode())
	assert.Contains(t, d.Reasons()[0], "exceed maximum of 3")
	_, ok := d.LoanDetails()
	assert.False(t, ok)
}

func TestRoute_RecessionApproval(t *testing.T) {
	policy := modeltest.Policy()
	policy.RecessionMode.Enabled = true

	d, err := newPipeline().Evaluate(personal(modeltest.StrongProfile("b-5"), policy))
	require.NoError(t, err)

	require.Equal(t, valueobject.DecisionApprove, d.Decision())
	details, _ := d.LoanDetails()
	assert.True(t, details.InterestRate.Equal(decimal.NewFromInt(11)))
	assert.Equal(t, 36, details.Term)
	assert.True(t, d.HasRiskFlag(valueobject.RiskFlagRecessionMode))
	assert.True(t, d.Record().ScoringDetails.RecessionMode)
	for _, term := range d.Record().TermOptions {
		assert.LessOrEqual(t, term, 36)
	}
}

func TestRoute_ConditionalBandGoesToReview(t *testing.T) {
	d, err := newPipeline().Evaluate(personal(modeltest.FairProfile("b-6"), modeltest.Policy()))
	require.NoError(t, err)

	assert.Equal(t, valueobject.DecisionReview, d.Decision())
	assert.Equal(t, 623, d.Score())
	assert.Contains(t, d.Record().Recommendations, "improve credit score to at least 700")
	_, ok := d.LoanDetails()
	assert.False(t, ok)
}

func TestRoute_BelowConditionalRejects(t *testing.T) {
	p := modeltest.FairProfile("b-7")
	p.PaymentHistory = decimal.NewFromFloat(0.85)

	d, err := newPipeline().Evaluate(personal(p, modeltest.Policy()))
	require.NoError(t, err)

	assert.Equal(t, 569, d.Score())
	assert.Equal(t, valueobject.DecisionReject, d.Decision())
	assert.Equal(t, valueobject.RejectScoreBelowThreshold, d.RejectionCode())
	assert.True(t, d.FlagForReview(), "scores above the review threshold are near misses")
}

func TestRoute_AutoApprovalGate(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		policy := modeltest.Policy()
		policy.AutoApproval.Enabled = false

		d, err := newPipeline().Evaluate(personal(modeltest.StrongProfile("b-8"), policy))
		require.NoError(t, err)
		assert.Equal(t, valueobject.DecisionReview, d.Decision())
		assert.True(t, d.FlagForReview())
		assert.Equal(t, "pending manual sign-off: automatic approval disabled", d.Reasons()[0])
	})

	t.Run("new customer flag", func(t *testing.T) {
		p := modeltest.StrongProfile("b-9")
		p.CreditAgeMonths = 3

		d, err := newPipeline().Evaluate(personal(p, modeltest.Policy()))
		require.NoError(t, err)
		assert.Equal(t, valueobject.DecisionReview, d.Decision())
		assert.True(t, d.HasRiskFlag(valueobject.RiskFlagNewCustomer))
		assert.Contains(t, d.Reasons()[0], "NEW_CUSTOMER")
	})

	t.Run("amount above limit", func(t *testing.T) {
		p := modeltest.WithCollateral(modeltest.StrongProfile("b-10"), 10000, 0.8)

		d, err := newPipeline().Evaluate(personal(p, modeltest.Policy()))
		require.NoError(t, err)
		assert.True(t, d.MaxLoanAmount().Equal(decimal.NewFromInt(57000)))
		assert.Equal(t, valueobject.DecisionReview, d.Decision())
		assert.True(t, d.HasRiskFlag(valueobject.RiskFlagHighAmount))
	})
}

func TestRoute_CollateralRaisesDTILimit(t *testing.T) {
	p := modeltest.StrongProfile("b-11")
	p.TotalDebt = decimal.NewFromInt(4600)

	withoutCollateral, err := newPipeline().Evaluate(personal(p, modeltest.Policy()))
	require.NoError(t, err)
	assert.Equal(t, valueobject.DecisionReview, withoutCollateral.Decision())
	assert.Contains(t, withoutCollateral.Record().Recommendations, "reduce debt-to-income ratio to 0.43 or below")

	req := personal(modeltest.WithCollateral(p, 10000, 0.8), modeltest.Policy())
	req.RequestedAmount = modeltest.DecPtr(30000)
	withCollateral, err := newPipeline().Evaluate(req)
	require.NoError(t, err)
	assert.Equal(t, valueobject.DecisionApprove, withCollateral.Decision())
	assert.True(t, withCollateral.HasRiskFlag(valueobject.RiskFlagHighDTI))
}

func TestRoute_CollateralRequiredBucket(t *testing.T) {
	policy := modeltest.Policy()
	policy.CollateralRules.RequiredForBuckets = []valueobject.Classification{valueobject.ClassificationExcellent}

	d, err := newPipeline().Evaluate(personal(modeltest.StrongProfile("b-12"), policy))
	require.NoError(t, err)
	assert.Equal(t, valueobject.DecisionReview, d.Decision())
	assert.True(t, d.Record().CollateralRequired)
	assert.Contains(t, d.Record().Recommendations, "provide collateral worth at least 1000.00")

	req := personal(modeltest.WithCollateral(modeltest.StrongProfile("b-12"), 10000, 0.8), policy)
	req.RequestedAmount = modeltest.DecPtr(20000)
	d, err = newPipeline().Evaluate(req)
	require.NoError(t, err)
	assert.Equal(t, valueobject.DecisionApprove, d.Decision())
}

func TestRoute_ErrorsPropagate(t *testing.T) {
	t.Run("invalid policy", func(t *testing.T) {
		policy := modeltest.Policy()
		lp := policy.LendingPolicy[valueobject.LoanTypePersonal]
		lp.ScoreThresholds = model.ScoreThresholds{Approve: 600, Conditional: 700, Review: 500}
		policy.LendingPolicy[valueobject.LoanTypePersonal] = lp
		_, err := newPipeline().Evaluate(personal(modeltest.StrongProfile("b-13"), policy))
		assert.True(t, model.IsConfiguration(err))
	})

	t.Run("invalid profile", func(t *testing.T) {
		p := modeltest.StrongProfile("b-14")
		p.PaymentHistory = decimal.NewFromFloat(1.5)
		_, err := newPipeline().Evaluate(personal(p, modeltest.Policy()))
		assert.True(t, model.IsValidation(err))
	})
}

func TestRoute_SameInputsGiveEquivalentDecisions(t *testing.T) {
	pipeline := newPipeline()
	req := personal(modeltest.FairProfile("b-15"), modeltest.Policy())

	first, err := pipeline.Evaluate(req)
	require.NoError(t, err)
	second, err := pipeline.Evaluate(req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID(), second.ID())
	assert.True(t, first.Equivalent(second))
}

func TestOverride(t *testing.T) {
	pipeline := newPipeline()
	p := modeltest.StrongProfile("b-16")
	p.RecentMissedPayments = 4
	rejected, err := pipeline.Evaluate(personal(p, modeltest.Policy()))
	require.NoError(t, err)
	require.Equal(t, valueobject.DecisionReject, rejected.Decision())

	t.Run("manual approval supersedes without touching the original", func(t *testing.T) {
		manual, err := pipeline.Override(rejected, service.ManualDecision{
			Decision:              valueobject.DecisionApprove,
			Notes:                 "verified payroll deposits",
			OverrideJustification: "missed payments were a bank processing error",
			LoanDetails: &model.LoanDetails{
				Amount:       decimal.NewFromInt(15000),
				Term:         24,
				InterestRate: decimal.NewFromFloat(10.5),
			},
		}, "lender-7")
		require.NoError(t, err)

		assert.Equal(t, valueobject.DecisionApprove, manual.Decision())
		assert.True(t, manual.IsManual())
		assert.Equal(t, "lender-7", manual.DecisionBy())
		assert.Equal(t, rejected.ID(), manual.Supersedes())
		assert.Empty(t, manual.RejectionCode())
		assert.NotEqual(t, rejected.ID(), manual.ID())

		assert.Equal(t, valueobject.DecisionReject, rejected.Decision())
		assert.False(t, rejected.IsManual())
		_, ok := rejected.LoanDetails()
		assert.False(t, ok)
	})

	t.Run("justification is required", func(t *testing.T) {
		_, err := pipeline.Override(rejected, service.ManualDecision{Decision: valueobject.DecisionHold}, "lender-7")
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "overrideJustification", ve.Field)
	})

	t.Run("approval needs loan details", func(t *testing.T) {
		_, err := pipeline.Override(rejected, service.ManualDecision{
			Decision:              valueobject.DecisionApprove,
			OverrideJustification: "relationship customer",
		}, "lender-7")
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "loanDetails", ve.Field)
	})

	t.Run("risk tier override and hold", func(t *testing.T) {
		tier := valueobject.RiskTierHigh
		held, err := pipeline.Override(rejected, service.ManualDecision{
			Decision:              valueobject.DecisionHold,
			OverrideJustification: "awaiting bank statements",
			RiskTierOverride:      &tier,
			FlagForReview:         true,
			ReviewNote:            "follow up in 7 days",
		}, "lender-8")
		require.NoError(t, err)

		rec := held.Record()
		assert.Equal(t, valueobject.DecisionHold, rec.Decision)
		assert.Equal(t, valueobject.RiskTierHigh, rec.RiskTier)
		assert.Equal(t, "High Risk", rec.RiskTierLabel)
		require.NotNil(t, rec.RiskTierOverride)
		assert.True(t, rec.FlagForReview)
		assert.Equal(t, "follow up in 7 days", rec.ReviewNote)
		assert.Empty(t, rec.RejectionCode)
	})
}

func TestLendingDecision_RecordIsACopy(t *testing.T) {
	d, err := newPipeline().Evaluate(personal(modeltest.StrongProfile("b-17"), modeltest.Policy()))
	require.NoError(t, err)

	rec := d.Record()
	rec.Reasons[0] = "tampered"
	rec.LoanDetails.Amount = decimal.NewFromInt(1)

	assert.NotEqual(t, "tampered", d.Reasons()[0])
	details, _ := d.LoanDetails()
	assert.True(t, details.Amount.Equal(decimal.NewFromInt(50000)))
}
