package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// DecisionState – immutable value object
// ---------------------------------------------------------------------------

// DecisionState is the routed outcome of a lending decision.
type DecisionState struct {
	value string
}

const (
	decisionReview  = "REVIEW"
	decisionApprove = "APPROVE"
	decisionReject  = "REJECT"
	decisionHold    = "HOLD"
)

var (
	DecisionReview  = DecisionState{value: decisionReview}
	DecisionApprove = DecisionState{value: decisionApprove}
	DecisionReject  = DecisionState{value: decisionReject}
	DecisionHold    = DecisionState{value: decisionHold}
)

var validDecisionStates = map[string]DecisionState{
	decisionReview:  DecisionReview,
	decisionApprove: DecisionApprove,
	decisionReject:  DecisionReject,
	decisionHold:    DecisionHold,
}

// NewDecisionState creates a DecisionState from a raw string.
func NewDecisionState(s string) (DecisionState, error) {
	v, ok := validDecisionStates[s]
	if !ok {
		return DecisionState{}, fmt.Errorf("invalid decision state: %q", s)
	}
	return v, nil
}

// IsTerminal reports whether automatic routing stops at this state.
// APPROVE and REJECT are terminal; REVIEW and HOLD are provisional.
func (s DecisionState) IsTerminal() bool {
	return s.value == decisionApprove || s.value == decisionReject
}

func (s DecisionState) String() string { return s.value }

// IsZero returns true if the state has not been initialised.
func (s DecisionState) IsZero() bool { return s.value == "" }

// Equal returns true when both states carry the same value.
func (s DecisionState) Equal(other DecisionState) bool { return s.value == other.value }

func (s DecisionState) MarshalText() ([]byte, error) { return []byte(s.value), nil }

func (s *DecisionState) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = DecisionState{}
		return nil
	}
	v, err := NewDecisionState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
