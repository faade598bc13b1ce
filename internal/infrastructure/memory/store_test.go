package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman3729/credit-score/internal/domain/event"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/model/modeltest"
	"github.com/aman3729/credit-score/internal/domain/service"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
	"github.com/aman3729/credit-score/internal/infrastructure/memory"
)

func decide(t *testing.T, p model.BorrowerProfile) model.LendingDecision {
	t.Helper()
	d, err := service.NewDecisionPipeline(nil).Evaluate(service.EvaluationRequest{
		Profile:  p,
		Policy:   modeltest.Policy(),
		LoanType: valueobject.LoanTypePersonal,
	})
	require.NoError(t, err)
	return d
}

func TestStore_Profiles(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	_, err := s.FindByID(ctx, "b-1")
	require.ErrorIs(t, err, model.ErrBorrowerNotFound)

	saved, err := s.SaveProfile(ctx, modeltest.WithCollateral(modeltest.StrongProfile("b-1"), 5000, 0.9))
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	got, err := s.FindByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)

	*got.CollateralValue = modeltest.Dec(1)
	again, err := s.FindByID(ctx, "b-1")
	require.NoError(t, err)
	assert.True(t, again.CollateralValue.Equal(modeltest.Dec(5000)), "callers get copies")

	bad := modeltest.StrongProfile("b-2")
	bad.MonthlyIncome = modeltest.Dec(-1)
	_, err = s.SaveProfile(ctx, bad)
	assert.True(t, model.IsValidation(err))
}

func TestStore_LedgerAppend(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	p := modeltest.StrongProfile("b-1")

	first := decide(t, p).WithSequence(1)
	require.NoError(t, s.Append(ctx, first, event.NewDecisionRecorded(first)))

	t.Run("stale sequence conflicts", func(t *testing.T) {
		err := s.Append(ctx, decide(t, p).WithSequence(1))
		require.ErrorIs(t, err, model.ErrConcurrencyConflict)
	})

	t.Run("gaps conflict", func(t *testing.T) {
		err := s.Append(ctx, decide(t, p).WithSequence(3))
		require.ErrorIs(t, err, model.ErrConcurrencyConflict)
	})

	second := decide(t, p).Following(first)
	require.NoError(t, s.Append(ctx, second))

	latest, err := s.Latest(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID(), latest.ID())
	assert.Equal(t, first.ID(), latest.Supersedes())

	_, err = s.Latest(ctx, "nobody")
	require.ErrorIs(t, err, model.ErrDecisionNotFound)
}

// decideAt evaluates p with a router whose clock is fixed at ts.
func decideAt(t *testing.T, p model.BorrowerProfile, ts time.Time) model.LendingDecision {
	t.Helper()
	router := service.NewDecisionRouter(nil, func() time.Time { return ts })
	d, err := service.NewDecisionPipeline(router).Evaluate(service.EvaluationRequest{
		Profile:  p,
		Policy:   modeltest.Policy(),
		LoanType: valueobject.LoanTypePersonal,
	})
	require.NoError(t, err)
	return d
}

func TestStore_LedgerRejectsOutOfOrderTimestamps(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	p := modeltest.StrongProfile("b-1")
	noon := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	first := decideAt(t, p, noon.Add(time.Second)).WithSequence(1)
	require.NoError(t, s.Append(ctx, first))

	t.Run("older record at the next sequence", func(t *testing.T) {
		err := s.Append(ctx, decideAt(t, p, noon).WithSequence(2))
		require.ErrorIs(t, err, model.ErrConcurrencyConflict)
	})

	t.Run("older record placed after the latest is restamped", func(t *testing.T) {
		next := decideAt(t, p, noon).Following(first)
		require.NoError(t, s.Append(ctx, next))

		history, err := s.History(ctx, "b-1", 0, 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.True(t, history[1].Timestamp().After(history[0].Timestamp()))
	})
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	p := modeltest.FairProfile("b-1")

	prev := decide(t, p).WithSequence(1)
	require.NoError(t, s.Append(ctx, prev))
	for i := 0; i < 4; i++ {
		next := decide(t, p).Following(prev)
		require.NoError(t, s.Append(ctx, next))
		prev = next
	}

	tests := []struct {
		after, limit int
		want         []int
	}{
		{after: 0, limit: 10, want: []int{1, 2, 3, 4, 5}},
		{after: 0, limit: 2, want: []int{1, 2}},
		{after: 3, limit: 10, want: []int{4, 5}},
		{after: 5, limit: 10, want: []int{}},
		{after: 99, limit: 10, want: []int{}},
		{after: 1, limit: 0, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("after %d limit %d", tt.after, tt.limit), func(t *testing.T) {
			got, err := s.History(ctx, "b-1", tt.after, tt.limit)
			require.NoError(t, err)
			seqs := make([]int, 0, len(got))
			for _, d := range got {
				seqs = append(seqs, d.Sequence())
			}
			assert.Equal(t, tt.want, seqs)
		})
	}
}

func TestStore_Commit(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	p := modeltest.StrongProfile("b-1")

	d := decide(t, p).WithSequence(1)
	require.NoError(t, s.Commit(ctx, p, d, event.NewDecisionRecorded(d)))

	stored, err := s.FindByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)

	t.Run("stale profile version", func(t *testing.T) {
		stale := p
		stale.Version = 0
		err := s.Commit(ctx, stale, decide(t, p).Following(d))
		require.ErrorIs(t, err, model.ErrConcurrencyConflict)
	})

	t.Run("nothing is written on conflict", func(t *testing.T) {
		err := s.Commit(ctx, stored, decide(t, p).WithSequence(1))
		require.ErrorIs(t, err, model.ErrConcurrencyConflict)

		again, err := s.FindByID(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, 1, again.Version)
		history, err := s.History(ctx, "b-1", 0, 10)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("mismatched borrower", func(t *testing.T) {
		err := s.Commit(ctx, modeltest.StrongProfile("b-2"), d)
		assert.True(t, model.IsValidation(err))
	})

	require.NoError(t, s.Commit(ctx, stored, decide(t, stored).Following(d)))
	latest, err := s.FindByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
}

func TestStore_Outbox(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	prev := model.LendingDecision{}
	for i := 1; i <= 3; i++ {
		d := decide(t, modeltest.StrongProfile("b-1"))
		if i == 1 {
			d = d.WithSequence(1)
		} else {
			d = d.Following(prev)
		}
		require.NoError(t, s.Append(ctx, d, event.NewDecisionRecorded(d)))
		prev = d
	}

	batch, err := s.FetchUnpublished(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, event.TypeDecisionRecorded, batch[0].EventType)
	assert.Equal(t, "b-1", batch[0].AggregateID)
	assert.Contains(t, string(batch[0].Payload), `"decision_id"`)

	require.NoError(t, s.MarkPublished(ctx, []string{batch[0].ID, batch[1].ID}))

	rest, err := s.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.NotEqual(t, batch[0].ID, rest[0].ID)
}

// Concurrent writers for one borrower race on the same sequence; exactly
// one wins each round and the ledger stays dense.
func TestStore_ConcurrentAppendsKeepLedgerDense(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	p := modeltest.StrongProfile("b-1")
	base := decide(t, p)

	const writers = 16
	const perWriter = 10

	var wg sync.WaitGroup
	var mu sync.Mutex
	conflicts := 0
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for written := 0; written < perWriter; {
				var next model.LendingDecision
				current, err := s.Latest(ctx, "b-1")
				switch {
				case errors.Is(err, model.ErrDecisionNotFound):
					next = base.WithSequence(1)
				case err != nil:
					t.Error(err)
					return
				default:
					next = base.Following(current)
				}
				err = s.Append(ctx, next)
				if errors.Is(err, model.ErrConcurrencyConflict) {
					mu.Lock()
					conflicts++
					mu.Unlock()
					continue
				}
				if err != nil {
					t.Error(err)
					return
				}
				written++
			}
		}()
	}
	wg.Wait()

	history, err := s.History(ctx, "b-1", 0, writers*perWriter+1)
	require.NoError(t, err)
	require.Len(t, history, writers*perWriter)
	for i, d := range history {
		assert.Equal(t, i+1, d.Sequence())
	}
	t.Logf("conflicts resolved: %d", conflicts)
}

func TestStore_BorrowersAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("b-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := modeltest.StrongProfile(id)
			d := decide(t, p).WithSequence(1)
			assert.NoError(t, s.Commit(ctx, p, d, event.NewDecisionRecorded(d)))
		}()
	}
	wg.Wait()

	entries, err := s.FetchUnpublished(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
