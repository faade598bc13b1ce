package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// RiskTier – immutable value object
// ---------------------------------------------------------------------------

// RiskTier is the behavioral risk band of a borrower.
type RiskTier struct {
	value string
}

const (
	riskTierLow      = "LOW"
	riskTierModerate = "MODERATE"
	riskTierHigh     = "HIGH"
)

var (
	RiskTierLow      = RiskTier{value: riskTierLow}
	RiskTierModerate = RiskTier{value: riskTierModerate}
	RiskTierHigh     = RiskTier{value: riskTierHigh}
)

// NewRiskTier creates a RiskTier from its string form.
func NewRiskTier(s string) (RiskTier, error) {
	switch s {
	case riskTierLow:
		return RiskTierLow, nil
	case riskTierModerate:
		return RiskTierModerate, nil
	case riskTierHigh:
		return RiskTierHigh, nil
	default:
		return RiskTier{}, fmt.Errorf("invalid risk tier: %q", s)
	}
}

// Level returns 1 (low) through 3 (high).
func (r RiskTier) Level() int {
	switch r.value {
	case riskTierLow:
		return 1
	case riskTierModerate:
		return 2
	case riskTierHigh:
		return 3
	default:
		return 0
	}
}

// Label returns the human-readable tier name.
func (r RiskTier) Label() string {
	switch r.value {
	case riskTierLow:
		return "Low Risk"
	case riskTierModerate:
		return "Moderate Risk"
	case riskTierHigh:
		return "High Risk"
	default:
		return ""
	}
}

func (r RiskTier) String() string { return r.value }

// IsZero returns true if the tier has not been set.
func (r RiskTier) IsZero() bool { return r.value == "" }

// Equal returns true when both tiers carry the same value.
func (r RiskTier) Equal(other RiskTier) bool { return r.value == other.value }

func (r RiskTier) MarshalText() ([]byte, error) { return []byte(r.value), nil }

func (r *RiskTier) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = RiskTier{}
		return nil
	}
	t, err := NewRiskTier(string(b))
	if err != nil {
		return err
	}
	*r = t
	return nil
}
