package event

import (
	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const aggregateType = "BorrowerDecision"

const (
	TypeDecisionRecorded    = "credit.decision.recorded"
	TypeDecisionOverridden  = "credit.decision.overridden"
	TypeProfileRecalculated = "credit.profile.recalculated"
)

// ---------------------------------------------------------------------------
// Decision events
// ---------------------------------------------------------------------------

// DecisionRecorded is raised whenever the engine appends an automatic decision.
type DecisionRecorded struct {
	events.BaseEvent
	DecisionID     string `json:"decision_id"`
	Sequence       int    `json:"sequence"`
	LoanType       string `json:"loan_type"`
	Decision       string `json:"decision"`
	Score          int    `json:"score"`
	Classification string `json:"classification"`
	RiskTier       string `json:"risk_tier"`
	PolicyVersion  int    `json:"policy_version"`
}

func NewDecisionRecorded(d model.LendingDecision) DecisionRecorded {
	return DecisionRecorded{
		BaseEvent:      events.NewBaseEvent(TypeDecisionRecorded, d.BorrowerID(), aggregateType, d.BankCode()),
		DecisionID:     d.ID(),
		Sequence:       d.Sequence(),
		LoanType:       d.LoanType().String(),
		Decision:       d.Decision().String(),
		Score:          d.Score(),
		Classification: d.Classification().String(),
		RiskTier:       d.RiskTier().String(),
		PolicyVersion:  d.PolicyVersion(),
	}
}

// DecisionOverridden is raised when a lender records a manual decision.
type DecisionOverridden struct {
	events.BaseEvent
	DecisionID           string `json:"decision_id"`
	SupersededDecisionID string `json:"superseded_decision_id"`
	Sequence             int    `json:"sequence"`
	Decision             string `json:"decision"`
	DecisionBy           string `json:"decision_by"`
	FlagForReview        bool   `json:"flag_for_review"`
}

func NewDecisionOverridden(d model.LendingDecision) DecisionOverridden {
	return DecisionOverridden{
		BaseEvent:            events.NewBaseEvent(TypeDecisionOverridden, d.BorrowerID(), aggregateType, d.BankCode()),
		DecisionID:           d.ID(),
		SupersededDecisionID: d.Supersedes(),
		Sequence:             d.Sequence(),
		Decision:             d.Decision().String(),
		DecisionBy:           d.DecisionBy(),
		FlagForReview:        d.FlagForReview(),
	}
}

// ---------------------------------------------------------------------------
// Profile events
// ---------------------------------------------------------------------------

// ProfileRecalculated is raised when new income or collateral data produced
// a fresh decision.
type ProfileRecalculated struct {
	events.BaseEvent
	ProfileVersion  int              `json:"profile_version"`
	MonthlyIncome   decimal.Decimal  `json:"monthly_income"`
	CollateralValue *decimal.Decimal `json:"collateral_value,omitempty"`
	DecisionID      string           `json:"decision_id"`
}

func NewProfileRecalculated(p model.BorrowerProfile, d model.LendingDecision) ProfileRecalculated {
	return ProfileRecalculated{
		BaseEvent:       events.NewBaseEvent(TypeProfileRecalculated, p.BorrowerID, aggregateType, p.BankCode),
		ProfileVersion:  p.Version,
		MonthlyIncome:   p.MonthlyIncome,
		CollateralValue: p.CollateralValue,
		DecisionID:      d.ID(),
	}
}
