package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/application/usecase"
	"github.com/aman3729/credit-score/internal/domain/event"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/model/modeltest"
	"github.com/aman3729/credit-score/internal/domain/service"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

func stretchedProfile(id string) model.BorrowerProfile {
	p := modeltest.StrongProfile(id)
	p.TotalDebt = decimal.NewFromInt(4600)
	return p
}

func ledgerWith(t *testing.T, p model.BorrowerProfile, loanType valueobject.LoanType) (*mockLedger, model.LendingDecision) {
	t.Helper()
	d, err := testPipeline().Evaluate(service.EvaluationRequest{Profile: p, Policy: modeltest.Policy(), LoanType: loanType})
	require.NoError(t, err)
	d = d.WithSequence(1)
	return &mockLedger{appended: []model.LendingDecision{d}}, d
}

func newRecalcUseCase(profiles *mockProfileStore, ledger *mockLedger, committer *mockCommitter, observer usecase.DecisionObserver) *usecase.RecalculateDecisionUseCase {
	return usecase.NewRecalculateDecisionUseCase(&mockPolicyStore{}, profiles, ledger, committer, testPipeline(), observer, discardLogger())
}

func TestRecalculateDecision_Execute(t *testing.T) {
	t.Run("collateral turns a review into an approval", func(t *testing.T) {
		p := stretchedProfile("b-1")
		ledger, current := ledgerWith(t, p, valueobject.LoanTypePersonal)
		require.Equal(t, valueobject.DecisionReview, current.Decision())

		committer := &mockCommitter{}
		observer := &recordingObserver{}
		uc := newRecalcUseCase(storedProfile(p, 2), ledger, committer, observer)

		amount := decimal.NewFromInt(30000)
		resp, err := uc.Execute(context.Background(), lender(), dto.RecalculateDecisionRequest{
			BorrowerID:        "b-1",
			CollateralValue:   modeltest.DecPtr(10000),
			CollateralQuality: modeltest.DecPtr(0.8),
			RequestedAmount:   &amount,
		})
		require.NoError(t, err)

		assert.Equal(t, "APPROVE", resp.Decision)
		assert.Equal(t, 2, resp.Sequence)
		assert.Equal(t, current.ID(), resp.Supersedes)
		assert.Contains(t, resp.RiskFlags, "HIGH_DTI")

		require.Len(t, committer.commits, 1)
		c := committer.commits[0]
		assert.Equal(t, 2, c.profile.Version, "commit is guarded by the version that was read")
		require.NotNil(t, c.profile.CollateralValue)
		assert.True(t, c.profile.CollateralValue.Equal(decimal.NewFromInt(10000)))
		require.Len(t, c.events, 2)
		assert.Equal(t, event.TypeDecisionRecorded, c.events[0].EventType())
		recalculated, ok := c.events[1].(event.ProfileRecalculated)
		require.True(t, ok)
		assert.Equal(t, 3, recalculated.ProfileVersion)
		assert.Equal(t, resp.ID, recalculated.DecisionID)

		assert.Equal(t, []string{"APPROVE/personal"}, observer.decisions)
		assert.Equal(t, 1, observer.durations["recalculate"])
	})

	t.Run("retries after a conflict", func(t *testing.T) {
		p := modeltest.StrongProfile("b-2")
		attempts := 0
		committer := &mockCommitter{
			commitFunc: func(context.Context, model.BorrowerProfile, model.LendingDecision, ...event.DomainEvent) error {
				attempts++
				if attempts < 3 {
					return model.ErrConcurrencyConflict
				}
				return nil
			},
		}
		profiles := storedProfile(p, 1)
		observer := &recordingObserver{}
		uc := newRecalcUseCase(profiles, &mockLedger{}, committer, observer)

		resp, err := uc.Execute(context.Background(), lender(), dto.RecalculateDecisionRequest{
			BorrowerID:    "b-2",
			MonthlyIncome: modeltest.DecPtr(12000),
		})
		require.NoError(t, err)
		assert.Equal(t, "APPROVE", resp.Decision)
		assert.Equal(t, 3, profiles.calls, "each attempt rereads the profile")
		assert.Equal(t, 2, observer.conflicts)
		assert.Len(t, committer.commits, 1)
	})

	t.Run("gives up after the attempt limit", func(t *testing.T) {
		committer := &mockCommitter{
			commitFunc: func(context.Context, model.BorrowerProfile, model.LendingDecision, ...event.DomainEvent) error {
				return model.ErrConcurrencyConflict
			},
		}
		profiles := storedProfile(modeltest.StrongProfile("b-3"), 1)
		observer := &recordingObserver{}
		uc := newRecalcUseCase(profiles, &mockLedger{}, committer, observer)

		_, err := uc.Execute(context.Background(), lender(), dto.RecalculateDecisionRequest{
			BorrowerID:    "b-3",
			MonthlyIncome: modeltest.DecPtr(9000),
		})
		require.ErrorIs(t, err, model.ErrConcurrencyConflict)
		assert.Equal(t, usecase.MaxRecalculationAttempts, profiles.calls)
		assert.Equal(t, usecase.MaxRecalculationAttempts, observer.conflicts)
		assert.Empty(t, observer.decisions)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		p := modeltest.StrongProfile("b-4")
		p.BankCode = "BANK-Z"
		profiles := storedProfile(p, 1)
		uc := newRecalcUseCase(profiles, &mockLedger{}, &mockCommitter{}, nil)

		_, err := uc.Execute(context.Background(), lender(), dto.RecalculateDecisionRequest{BorrowerID: "b-4"})
		assert.True(t, model.IsPolicyNotFound(err))
		assert.Equal(t, 1, profiles.calls)
	})

	t.Run("loan type falls back to the current decision", func(t *testing.T) {
		p := modeltest.StrongProfile("b-5")
		ledger, _ := ledgerWith(t, p, valueobject.LoanTypeBusiness)
		uc := newRecalcUseCase(storedProfile(p, 1), ledger, &mockCommitter{}, nil)

		resp, err := uc.Execute(context.Background(), lender(), dto.RecalculateDecisionRequest{BorrowerID: "b-5"})
		require.NoError(t, err)
		assert.Equal(t, "business", resp.LoanType)
	})

	t.Run("loan type defaults to personal without history", func(t *testing.T) {
		uc := newRecalcUseCase(storedProfile(modeltest.StrongProfile("b-6"), 1), &mockLedger{}, &mockCommitter{}, nil)

		resp, err := uc.Execute(context.Background(), lender(), dto.RecalculateDecisionRequest{BorrowerID: "b-6"})
		require.NoError(t, err)
		assert.Equal(t, "personal", resp.LoanType)
		assert.Equal(t, 1, resp.Sequence)
		assert.Empty(t, resp.Supersedes)
	})

	t.Run("invalid income is rejected before commit", func(t *testing.T) {
		committer := &mockCommitter{}
		uc := newRecalcUseCase(storedProfile(modeltest.StrongProfile("b-7"), 1), &mockLedger{}, committer, nil)

		_, err := uc.Execute(context.Background(), lender(), dto.RecalculateDecisionRequest{
			BorrowerID:    "b-7",
			MonthlyIncome: modeltest.DecPtr(-5),
		})
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "monthlyIncome", ve.Field)
		assert.Empty(t, committer.commits)
	})

	t.Run("denied without the recalculate capability", func(t *testing.T) {
		profiles := storedProfile(modeltest.StrongProfile("b-8"), 1)
		uc := newRecalcUseCase(profiles, &mockLedger{}, &mockCommitter{}, nil)

		_, err := uc.Execute(context.Background(), auditor(), dto.RecalculateDecisionRequest{BorrowerID: "b-8"})
		require.ErrorIs(t, err, model.ErrPermissionDenied)
		assert.Zero(t, profiles.calls)
	})

	t.Run("same inputs give equivalent decisions", func(t *testing.T) {
		committer := &mockCommitter{}
		uc := newRecalcUseCase(storedProfile(modeltest.FairProfile("b-9"), 4), &mockLedger{}, committer, nil)
		req := dto.RecalculateDecisionRequest{BorrowerID: "b-9", MonthlyIncome: modeltest.DecPtr(11000)}

		_, err := uc.Execute(context.Background(), lender(), req)
		require.NoError(t, err)
		_, err = uc.Execute(context.Background(), lender(), req)
		require.NoError(t, err)

		require.Len(t, committer.commits, 2)
		assert.True(t, committer.commits[0].decision.Equivalent(committer.commits[1].decision))
	})
}
