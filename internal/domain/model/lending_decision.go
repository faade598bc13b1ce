package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// EngineVersion is stamped on every decision the engine produces.
const EngineVersion = "decision-engine/2.3.0"

// LoanDetails are the offered terms; present only on approvals.
type LoanDetails struct {
	Amount       decimal.Decimal `json:"amount"`
	Term         int             `json:"term"`
	InterestRate decimal.Decimal `json:"interestRate"`
}

// Adjustment is a named score penalty or bonus.
type Adjustment struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type ScoringDetails struct {
	RecessionMode          bool            `json:"recessionMode"`
	AIEnabled              bool            `json:"aiEnabled"`
	EmploymentFloorApplied bool            `json:"employmentFloorApplied"`
	BehavioralScore        decimal.Decimal `json:"behavioralScore"`
	Penalties              []Adjustment    `json:"penalties"`
	Bonuses                []Adjustment    `json:"bonuses"`
}

// DecisionRecord is the persisted shape of a LendingDecision.
type DecisionRecord struct {
	ID            string                    `json:"id"`
	BorrowerID    string                    `json:"borrowerId"`
	Sequence      int                       `json:"sequence"`
	BankCode      string                    `json:"bankCode"`
	PolicyVersion int                       `json:"policyVersion"`
	LoanType      valueobject.LoanType      `json:"loanType"`
	Decision      valueobject.DecisionState `json:"decision"`

	Score               int                        `json:"score"`
	Classification      valueobject.Classification `json:"classification"`
	RiskTier            valueobject.RiskTier       `json:"riskTier"`
	RiskTierLabel       string                     `json:"riskTierLabel"`
	DefaultRiskEstimate decimal.Decimal            `json:"defaultRiskEstimate"`
	DTI                 decimal.Decimal            `json:"dti"`
	DTIRating           valueobject.DTIBand        `json:"dtiRating"`

	LoanDetails        *LoanDetails    `json:"loanDetails,omitempty"`
	MaxLoanAmount      decimal.Decimal `json:"maxLoanAmount"`
	TermOptions        []int           `json:"termOptions"`
	CollateralRequired bool            `json:"collateralRequired"`

	Reasons         []string                  `json:"reasons"`
	Recommendations []string                  `json:"recommendations"`
	RiskFlags       []valueobject.RiskFlag    `json:"riskFlags"`
	RejectionCode   valueobject.RejectionCode `json:"rejectionCode,omitempty"`

	IsManual              bool                  `json:"isManual"`
	DecisionBy            string                `json:"decisionBy"`
	ManualNotes           string                `json:"manualNotes,omitempty"`
	RiskTierOverride      *valueobject.RiskTier `json:"riskTierOverride,omitempty"`
	OverrideJustification string                `json:"overrideJustification,omitempty"`
	FlagForReview         bool                  `json:"flagForReview"`
	ReviewNote            string                `json:"reviewNote,omitempty"`
	Supersedes            string                `json:"supersedes,omitempty"`

	ScoringDetails ScoringDetails `json:"scoringDetails"`
	EngineVersion  string         `json:"engineVersion"`
	Timestamp      time.Time      `json:"timestamp"`
}

// SystemActor is recorded as decisionBy on automatic decisions.
const SystemActor = "system"

// ---------------------------------------------------------------------------
// LendingDecision – immutable value
// ---------------------------------------------------------------------------

// LendingDecision is the output of one evaluation or manual action. Once
// built it is never modified; superseding it appends a new decision.
type LendingDecision struct {
	rec DecisionRecord
}

var (
	errLoanDetailsOnNonApproval = errors.New("loan details are only allowed on approvals")
	errApprovalWithoutDetails   = errors.New("approval requires loan details")
)

// NewLendingDecision validates the record's invariants and wraps a private
// copy of it.
func NewLendingDecision(rec DecisionRecord) (LendingDecision, error) {
	if rec.ID == "" {
		return LendingDecision{}, NewValidationError("id", "is required")
	}
	if rec.BorrowerID == "" {
		return LendingDecision{}, NewValidationError("borrowerId", "is required")
	}
	if rec.Decision.IsZero() {
		return LendingDecision{}, NewValidationError("decision", "is required")
	}
	if rec.Decision.Equal(valueobject.DecisionApprove) && rec.LoanDetails == nil {
		return LendingDecision{}, errApprovalWithoutDetails
	}
	if !rec.Decision.Equal(valueobject.DecisionApprove) && rec.LoanDetails != nil {
		return LendingDecision{}, errLoanDetailsOnNonApproval
	}
	if rec.IsManual && rec.DecisionBy == "" {
		return LendingDecision{}, NewValidationError("decisionBy", "is required for manual decisions")
	}
	if rec.DecisionBy == "" {
		rec.DecisionBy = SystemActor
	}
	return LendingDecision{rec: cloneRecord(rec)}, nil
}

// WithSequence returns a copy carrying the ledger position.
func (d LendingDecision) WithSequence(seq int) LendingDecision {
	next := LendingDecision{rec: cloneRecord(d.rec)}
	next.rec.Sequence = seq
	return next
}

// Following places d directly after prev in the borrower's ledger and
// links it as prev's replacement. A timestamp that is not at least one
// microsecond past prev's is moved forward to that point.
func (d LendingDecision) Following(prev LendingDecision) LendingDecision {
	next := d.WithSequence(prev.rec.Sequence + 1)
	next.rec.Supersedes = prev.rec.ID
	if floor := EarliestAfter(prev.rec.Timestamp); next.rec.Timestamp.Before(floor) {
		next.rec.Timestamp = floor
	}
	return next
}

// EarliestAfter is the first instant a ledger entry following one stamped
// at ts may carry. Ledger timestamps are compared at microsecond precision.
func EarliestAfter(ts time.Time) time.Time {
	return ts.Truncate(time.Microsecond).Add(time.Microsecond)
}

// Record returns a deep copy of the underlying record.
func (d LendingDecision) Record() DecisionRecord { return cloneRecord(d.rec) }

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (d LendingDecision) ID() string                                 { return d.rec.ID }
func (d LendingDecision) BorrowerID() string                         { return d.rec.BorrowerID }
func (d LendingDecision) Sequence() int                              { return d.rec.Sequence }
func (d LendingDecision) BankCode() string                           { return d.rec.BankCode }
func (d LendingDecision) PolicyVersion() int                         { return d.rec.PolicyVersion }
func (d LendingDecision) LoanType() valueobject.LoanType             { return d.rec.LoanType }
func (d LendingDecision) Decision() valueobject.DecisionState        { return d.rec.Decision }
func (d LendingDecision) Score() int                                 { return d.rec.Score }
func (d LendingDecision) Classification() valueobject.Classification { return d.rec.Classification }
func (d LendingDecision) RiskTier() valueobject.RiskTier             { return d.rec.RiskTier }
func (d LendingDecision) DTI() decimal.Decimal                       { return d.rec.DTI }
func (d LendingDecision) MaxLoanAmount() decimal.Decimal             { return d.rec.MaxLoanAmount }
func (d LendingDecision) IsManual() bool                             { return d.rec.IsManual }
func (d LendingDecision) DecisionBy() string                         { return d.rec.DecisionBy }
func (d LendingDecision) RejectionCode() valueobject.RejectionCode   { return d.rec.RejectionCode }
func (d LendingDecision) FlagForReview() bool                        { return d.rec.FlagForReview }
func (d LendingDecision) Supersedes() string                         { return d.rec.Supersedes }
func (d LendingDecision) Timestamp() time.Time                       { return d.rec.Timestamp }
func (d LendingDecision) Reasons() []string                          { return cloneSlice(d.rec.Reasons) }
func (d LendingDecision) RiskFlags() []valueobject.RiskFlag          { return cloneSlice(d.rec.RiskFlags) }

// LoanDetails returns the offered terms, or false when not approved.
func (d LendingDecision) LoanDetails() (LoanDetails, bool) {
	if d.rec.LoanDetails == nil {
		return LoanDetails{}, false
	}
	return *d.rec.LoanDetails, true
}

// HasRiskFlag reports whether flag was raised.
func (d LendingDecision) HasRiskFlag(flag valueobject.RiskFlag) bool {
	for _, f := range d.rec.RiskFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// Equivalent compares two decisions ignoring identity, ledger position and
// time.
func (d LendingDecision) Equivalent(other LendingDecision) bool {
	a, errA := json.Marshal(normalizedForComparison(d.rec))
	b, errB := json.Marshal(normalizedForComparison(other.rec))
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func (d LendingDecision) MarshalJSON() ([]byte, error) { return json.Marshal(d.rec) }

func (d *LendingDecision) UnmarshalJSON(b []byte) error {
	var rec DecisionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	decoded, err := NewLendingDecision(rec)
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func normalizedForComparison(rec DecisionRecord) DecisionRecord {
	n := cloneRecord(rec)
	n.ID = ""
	n.Sequence = 0
	n.Supersedes = ""
	n.Timestamp = time.Time{}
	return n
}

func cloneRecord(rec DecisionRecord) DecisionRecord {
	out := rec
	if rec.LoanDetails != nil {
		ld := *rec.LoanDetails
		out.LoanDetails = &ld
	}
	if rec.RiskTierOverride != nil {
		t := *rec.RiskTierOverride
		out.RiskTierOverride = &t
	}
	out.TermOptions = cloneSlice(rec.TermOptions)
	out.Reasons = cloneSlice(rec.Reasons)
	out.Recommendations = cloneSlice(rec.Recommendations)
	out.RiskFlags = cloneSlice(rec.RiskFlags)
	out.ScoringDetails.Penalties = cloneSlice(rec.ScoringDetails.Penalties)
	out.ScoringDetails.Bonuses = cloneSlice(rec.ScoringDetails.Bonuses)
	return out
}

// cloneSlice never returns nil so empty lists encode as [].
func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
