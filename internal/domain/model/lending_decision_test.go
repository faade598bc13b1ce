package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

func approvedRecord() model.DecisionRecord {
	return model.DecisionRecord{
		ID:             "d-1",
		BorrowerID:     "b-1",
		BankCode:       "BANK-A",
		PolicyVersion:  3,
		LoanType:       valueobject.LoanTypePersonal,
		Decision:       valueobject.DecisionApprove,
		Score:          812,
		Classification: valueobject.ClassificationExcellent,
		RiskTier:       valueobject.RiskTierLow,
		RiskTierLabel:  "Low Risk",
		DTI:            decimal.NewFromFloat(0.2),
		DTIRating:      valueobject.DTIBandLow,
		LoanDetails: &model.LoanDetails{
			Amount:       decimal.NewFromInt(25000),
			Term:         36,
			InterestRate: decimal.NewFromFloat(9.5),
		},
		MaxLoanAmount: decimal.NewFromInt(50000),
		TermOptions:   []int{12, 24, 36},
		Reasons:       []string{"score 812 meets approval threshold 700"},
		EngineVersion: model.EngineVersion,
		Timestamp:     time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestNewLendingDecision_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.DecisionRecord)
		wantErr bool
	}{
		{"valid approval", func(*model.DecisionRecord) {}, false},
		{"missing id", func(r *model.DecisionRecord) { r.ID = "" }, true},
		{"missing borrower", func(r *model.DecisionRecord) { r.BorrowerID = "" }, true},
		{"missing decision", func(r *model.DecisionRecord) { r.Decision = valueobject.DecisionState{} }, true},
		{"approval without details", func(r *model.DecisionRecord) { r.LoanDetails = nil }, true},
		{"review with details", func(r *model.DecisionRecord) { r.Decision = valueobject.DecisionReview }, true},
		{"manual without actor", func(r *model.DecisionRecord) {
			r.IsManual = true
			r.DecisionBy = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := approvedRecord()
			tt.mutate(&rec)
			_, err := model.NewLendingDecision(rec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLendingDecision_DefaultsToSystemActor(t *testing.T) {
	d, err := model.NewLendingDecision(approvedRecord())
	require.NoError(t, err)
	assert.Equal(t, model.SystemActor, d.DecisionBy())
}

func TestLendingDecision_IsolatedFromInputRecord(t *testing.T) {
	rec := approvedRecord()
	d, err := model.NewLendingDecision(rec)
	require.NoError(t, err)

	rec.LoanDetails.Amount = decimal.NewFromInt(1)
	rec.Reasons[0] = "changed"
	rec.TermOptions[0] = 99

	details, ok := d.LoanDetails()
	require.True(t, ok)
	assert.True(t, details.Amount.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, "score 812 meets approval threshold 700", d.Reasons()[0])
	assert.Equal(t, 12, d.Record().TermOptions[0])
}

func TestLendingDecision_WithSequence(t *testing.T) {
	d, err := model.NewLendingDecision(approvedRecord())
	require.NoError(t, err)

	next := d.WithSequence(4)
	assert.Equal(t, 4, next.Sequence())
	assert.Equal(t, 0, d.Sequence())
	assert.True(t, d.Equivalent(next))
}

func TestLendingDecision_JSONRoundTrip(t *testing.T) {
	rec := approvedRecord()
	tier := valueobject.RiskTierModerate
	rec.RiskTierOverride = &tier
	rec.IsManual = true
	rec.DecisionBy = "lender-1"
	rec.OverrideJustification = "long-standing customer"
	rec.Supersedes = "d-0"
	d, err := model.NewLendingDecision(rec)
	require.NoError(t, err)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"decision":"APPROVE"`)
	assert.Contains(t, string(raw), `"riskTier":"LOW"`)
	assert.Contains(t, string(raw), `"riskFlags":[]`)

	var decoded model.LendingDecision
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, d.ID(), decoded.ID())
	assert.Equal(t, "d-0", decoded.Supersedes())
	assert.True(t, d.Equivalent(decoded))
	require.NotNil(t, decoded.Record().RiskTierOverride)
	assert.Equal(t, valueobject.RiskTierModerate, *decoded.Record().RiskTierOverride)
}

func TestLendingDecision_UnmarshalValidates(t *testing.T) {
	var d model.LendingDecision
	err := json.Unmarshal([]byte(`{"id":"d-1","borrowerId":"b-1","decision":"APPROVE"}`), &d)
	assert.Error(t, err)
}

func TestLendingDecision_EquivalentDetectsDifferences(t *testing.T) {
	a, err := model.NewLendingDecision(approvedRecord())
	require.NoError(t, err)

	rec := approvedRecord()
	rec.ID = "d-2"
	rec.Timestamp = rec.Timestamp.Add(time.Hour)
	b, err := model.NewLendingDecision(rec)
	require.NoError(t, err)
	assert.True(t, a.Equivalent(b))

	rec.Score = 700
	c, err := model.NewLendingDecision(rec)
	require.NoError(t, err)
	assert.False(t, a.Equivalent(c))
}

func TestLendingDecision_Following(t *testing.T) {
	prev, err := model.NewLendingDecision(approvedRecord())
	require.NoError(t, err)
	prev = prev.WithSequence(3)

	rec := approvedRecord()
	rec.ID = "d-2"
	next, err := model.NewLendingDecision(rec)
	require.NoError(t, err)

	linked := next.Following(prev)
	assert.Equal(t, 4, linked.Sequence())
	assert.Equal(t, "d-1", linked.Supersedes())
	assert.Empty(t, next.Supersedes())
}

func TestLendingDecision_FollowingKeepsTimestampsIncreasing(t *testing.T) {
	prevRec := approvedRecord()
	prevRec.Timestamp = time.Date(2026, 2, 1, 12, 0, 1, 0, time.UTC)
	prev, err := model.NewLendingDecision(prevRec)
	require.NoError(t, err)
	prev = prev.WithSequence(1)

	tests := []struct {
		name    string
		stamped time.Time
		want    time.Time
	}{
		{
			name:    "earlier clock is moved past the predecessor",
			stamped: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
			want:    time.Date(2026, 2, 1, 12, 0, 1, 1000, time.UTC),
		},
		{
			name:    "same instant is moved past the predecessor",
			stamped: prevRec.Timestamp,
			want:    time.Date(2026, 2, 1, 12, 0, 1, 1000, time.UTC),
		},
		{
			name:    "within the same microsecond is moved to the next one",
			stamped: prevRec.Timestamp.Add(300 * time.Nanosecond),
			want:    time.Date(2026, 2, 1, 12, 0, 1, 1000, time.UTC),
		},
		{
			name:    "later clock is kept",
			stamped: time.Date(2026, 2, 1, 12, 0, 5, 0, time.UTC),
			want:    time.Date(2026, 2, 1, 12, 0, 5, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := approvedRecord()
			rec.ID = "d-2"
			rec.Timestamp = tt.stamped
			next, err := model.NewLendingDecision(rec)
			require.NoError(t, err)

			linked := next.Following(prev)
			assert.True(t, linked.Timestamp().Equal(tt.want), "got %s", linked.Timestamp())
			assert.True(t, linked.Timestamp().After(prev.Timestamp()))
			assert.True(t, next.Timestamp().Equal(tt.stamped), "receiver is unchanged")
		})
	}
}
