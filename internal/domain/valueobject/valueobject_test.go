package valueobject_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

func TestNewDecisionState(t *testing.T) {
	for _, s := range []string{"REVIEW", "APPROVE", "REJECT", "HOLD"} {
		state, err := valueobject.NewDecisionState(s)
		require.NoError(t, err)
		assert.Equal(t, s, state.String())
	}

	_, err := valueobject.NewDecisionState("MAYBE")
	assert.Error(t, err)
}

func TestDecisionState_IsTerminal(t *testing.T) {
	assert.True(t, valueobject.DecisionApprove.IsTerminal())
	assert.True(t, valueobject.DecisionReject.IsTerminal())
	assert.False(t, valueobject.DecisionReview.IsTerminal())
	assert.False(t, valueobject.DecisionHold.IsTerminal())
}

func TestDecisionState_JSON(t *testing.T) {
	type wrapper struct {
		State valueobject.DecisionState `json:"state"`
	}

	raw, err := json.Marshal(wrapper{State: valueobject.DecisionHold})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"HOLD"}`, string(raw))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"state":""}`), &w))
	assert.True(t, w.State.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"state":"NOPE"}`), &w))
}

func TestRiskTier(t *testing.T) {
	tests := []struct {
		raw   string
		level int
		label string
	}{
		{"LOW", 1, "Low Risk"},
		{"MODERATE", 2, "Moderate Risk"},
		{"HIGH", 3, "High Risk"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			tier, err := valueobject.NewRiskTier(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.level, tier.Level())
			assert.Equal(t, tt.label, tier.Label())
		})
	}

	_, err := valueobject.NewRiskTier("low")
	assert.Error(t, err)
}

func TestClassification_Rank(t *testing.T) {
	assert.Equal(t, 0, valueobject.ClassificationPoor.Rank())
	assert.Greater(t, valueobject.ClassificationExcellent.Rank(), valueobject.ClassificationVeryGood.Rank())
	assert.Greater(t, valueobject.ClassificationGood.Rank(), valueobject.ClassificationFair.Rank())

	_, err := valueobject.ParseClassification("AVERAGE")
	assert.Error(t, err)
}

func TestEmploymentStatus(t *testing.T) {
	assert.True(t, valueobject.EmploymentEmployed.IsStable())
	assert.True(t, valueobject.EmploymentRetired.IsStable())
	assert.False(t, valueobject.EmploymentStudent.IsStable())
	assert.False(t, valueobject.EmploymentUnemployed.IsStable())
	assert.True(t, valueobject.EmploymentUnemployed.Stability().IsZero())

	_, err := valueobject.ParseEmploymentStatus("pirate")
	assert.Error(t, err)
}

func TestParseLoanType(t *testing.T) {
	lt, err := valueobject.ParseLoanType("business")
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanTypeBusiness, lt)

	_, err = valueobject.ParseLoanType("")
	assert.Error(t, err)
}
