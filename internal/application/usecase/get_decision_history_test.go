package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/application/usecase"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/model/modeltest"
	"github.com/aman3729/credit-score/internal/domain/service"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// ledgerOf builds a ledger holding n decisions for borrowerID.
func ledgerOf(t *testing.T, borrowerID string, n int) *mockLedger {
	t.Helper()
	ledger := &mockLedger{}
	pipeline := testPipeline()
	var prev model.LendingDecision
	for i := 1; i <= n; i++ {
		d, err := pipeline.Evaluate(service.EvaluationRequest{
			Profile:  modeltest.FairProfile(borrowerID),
			Policy:   modeltest.Policy(),
			LoanType: valueobject.LoanTypePersonal,
		})
		require.NoError(t, err)
		if i == 1 {
			d = d.WithSequence(1)
		} else {
			d = d.Following(prev)
		}
		ledger.appended = append(ledger.appended, d)
		prev = d
	}
	return ledger
}

func TestGetCurrentDecision_Execute(t *testing.T) {
	t.Run("returns the latest entry", func(t *testing.T) {
		uc := usecase.NewGetCurrentDecisionUseCase(ledgerOf(t, "b-1", 3))

		resp, err := uc.Execute(context.Background(), auditor(), dto.GetCurrentDecisionRequest{BorrowerID: "b-1"})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Sequence)
		assert.Equal(t, "REVIEW", resp.Decision)
		assert.NotEmpty(t, resp.Recommendations)
	})

	t.Run("no decision yet", func(t *testing.T) {
		uc := usecase.NewGetCurrentDecisionUseCase(&mockLedger{})

		_, err := uc.Execute(context.Background(), auditor(), dto.GetCurrentDecisionRequest{BorrowerID: "b-2"})
		require.ErrorIs(t, err, model.ErrDecisionNotFound)
	})

	t.Run("denied without the view capability", func(t *testing.T) {
		uc := usecase.NewGetCurrentDecisionUseCase(ledgerOf(t, "b-1", 1))

		_, err := uc.Execute(context.Background(), model.Actor{ID: "anon"}, dto.GetCurrentDecisionRequest{BorrowerID: "b-1"})
		require.ErrorIs(t, err, model.ErrPermissionDenied)
	})
}

func TestGetDecisionHistory_Execute(t *testing.T) {
	t.Run("pages through the whole ledger in order", func(t *testing.T) {
		uc := usecase.NewGetDecisionHistoryUseCase(ledgerOf(t, "b-1", 5))

		var seen []int
		after := 0
		for pages := 0; pages < 10; pages++ {
			resp, err := uc.Execute(context.Background(), auditor(), dto.GetDecisionHistoryRequest{
				BorrowerID: "b-1", AfterSequence: after, Limit: 2,
			})
			require.NoError(t, err)
			for _, d := range resp.Decisions {
				seen = append(seen, d.Sequence)
			}
			after = resp.NextAfterSequence
			if !resp.HasMore {
				break
			}
		}
		assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	})

	t.Run("restarts from any sequence", func(t *testing.T) {
		uc := usecase.NewGetDecisionHistoryUseCase(ledgerOf(t, "b-1", 5))

		resp, err := uc.Execute(context.Background(), auditor(), dto.GetDecisionHistoryRequest{BorrowerID: "b-1", AfterSequence: 3})
		require.NoError(t, err)
		require.Len(t, resp.Decisions, 2)
		assert.Equal(t, 4, resp.Decisions[0].Sequence)
		assert.Equal(t, 5, resp.NextAfterSequence)
		assert.False(t, resp.HasMore)
	})

	t.Run("empty history", func(t *testing.T) {
		uc := usecase.NewGetDecisionHistoryUseCase(&mockLedger{})

		resp, err := uc.Execute(context.Background(), auditor(), dto.GetDecisionHistoryRequest{BorrowerID: "b-9", AfterSequence: 7})
		require.NoError(t, err)
		assert.Empty(t, resp.Decisions)
		assert.NotNil(t, resp.Decisions)
		assert.Equal(t, 7, resp.NextAfterSequence)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		var requested []int
		ledger := &mockLedger{
			historyFunc: func(_ context.Context, _ string, _ int, limit int) ([]model.LendingDecision, error) {
				requested = append(requested, limit)
				return nil, nil
			},
		}
		uc := usecase.NewGetDecisionHistoryUseCase(ledger)

		for _, limit := range []int{0, -4, 10, 100000} {
			_, err := uc.Execute(context.Background(), auditor(), dto.GetDecisionHistoryRequest{BorrowerID: "b-1", Limit: limit})
			require.NoError(t, err)
		}
		assert.Equal(t, []int{51, 51, 11, 501}, requested)
	})

	t.Run("negative cursor", func(t *testing.T) {
		uc := usecase.NewGetDecisionHistoryUseCase(&mockLedger{})

		_, err := uc.Execute(context.Background(), auditor(), dto.GetDecisionHistoryRequest{BorrowerID: "b-1", AfterSequence: -1})
		assert.True(t, model.IsValidation(err))
	})

	t.Run("ledger failure is wrapped", func(t *testing.T) {
		boom := errors.New("connection reset")
		ledger := &mockLedger{
			historyFunc: func(context.Context, string, int, int) ([]model.LendingDecision, error) {
				return nil, fmt.Errorf("query: %w", boom)
			},
		}
		uc := usecase.NewGetDecisionHistoryUseCase(ledger)

		_, err := uc.Execute(context.Background(), auditor(), dto.GetDecisionHistoryRequest{BorrowerID: "b-1"})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "get decision history")
	})
}
