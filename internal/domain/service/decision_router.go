package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// recentDelinquencyMonths is the window in which a past delinquency is
// flagged for manual review.
const recentDelinquencyMonths = 12

// RouteInput bundles everything the router needs for one automatic decision.
type RouteInput struct {
	Profile         model.BorrowerProfile
	Policy          model.PartnerBankPolicy
	LoanType        valueobject.LoanType
	Score           ScoreResult
	Behavioral      BehavioralResult
	Terms           PolicyTerms
	RequestedAmount *decimal.Decimal
	RequestedTerm   int
}

// ManualDecision is a lender's override of the current decision.
type ManualDecision struct {
	Decision              valueobject.DecisionState
	Notes                 string
	LoanDetails           *model.LoanDetails
	RiskTierOverride      *valueobject.RiskTier
	OverrideJustification string
	FlagForReview         bool
	ReviewNote            string
}

// DecisionRouter is the decision state machine. It never mutates an existing
// decision; every call yields a new one.
type DecisionRouter struct {
	newID func() string
	now   func() time.Time
}

// NewDecisionRouter creates a router. Nil functions default to random UUIDs
// and the UTC wall clock.
func NewDecisionRouter(newID func() string, now func() time.Time) *DecisionRouter {
	if newID == nil {
		newID = uuid.NewString
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DecisionRouter{newID: newID, now: now}
}

// Route applies the routing rules in order and returns the resulting decision.
func (r *DecisionRouter) Route(in RouteInput) (model.LendingDecision, error) {
	lp, err := in.Policy.LoanPolicy(in.LoanType)
	if err != nil {
		return model.LendingDecision{}, err
	}
	th := lp.ScoreThresholds
	bt := in.Policy.BehavioralThresholds
	score := in.Score.Score

	amount, term, offerNotes := offer(in)
	flags := riskFlags(in, amount)

	rec := r.baseRecord(in)
	rec.RiskFlags = flags

	maxDTI := bt.MaxDTI
	if in.Terms.CollateralSufficient {
		maxDTI = bt.MaxDTIWithCollateral
	}
	dtiOK := in.Terms.DTI.LessThanOrEqual(maxDTI)
	collateralOK := !in.Terms.CollateralRequired || in.Terms.CollateralSufficient

	switch {
	// 1. Hard reject rules override everything else.
	case in.Score.HardReject != nil:
		rec.Decision = valueobject.DecisionReject
		rec.RejectionCode = in.Score.HardReject.Code
		rec.Reasons = []string{in.Score.HardReject.Reason}

	// 2. Candidate approval, subject to the auto-approval gate.
	case score >= th.Approve && dtiOK && collateralOK:
		blocking := blockingFlags(in.Policy.AutoApproval, flags)
		switch {
		case amount.IsZero() || term == 0:
			rec.Decision = valueobject.DecisionReview
			rec.FlagForReview = true
			rec.Reasons = []string{"no lendable amount or term available under current policy"}
		case in.Policy.AutoApproval.Enabled && amount.LessThanOrEqual(in.Policy.AutoApproval.MaxAmount) && len(blocking) == 0:
			rec.Decision = valueobject.DecisionApprove
			rec.LoanDetails = &model.LoanDetails{Amount: amount, Term: term, InterestRate: in.Terms.InterestRate}
			rec.Reasons = append([]string{fmt.Sprintf("score %d meets approval threshold %d", score, th.Approve)}, offerNotes...)
		default:
			rec.Decision = valueobject.DecisionReview
			rec.FlagForReview = true
			rec.Reasons = []string{"pending manual sign-off: " + signOffCause(in.Policy.AutoApproval, amount, blocking)}
		}

	// 3. Conditional band: a lender looks at it, with advice for the borrower.
	case score >= th.Conditional:
		rec.Decision = valueobject.DecisionReview
		rec.Reasons, rec.Recommendations = shortfalls(in, th, maxDTI, dtiOK, collateralOK)

	// 4. Everything else is rejected; near misses are flagged.
	default:
		rec.Decision = valueobject.DecisionReject
		rec.RejectionCode = valueobject.RejectScoreBelowThreshold
		rec.Reasons = []string{fmt.Sprintf("score %d below conditional threshold %d", score, th.Conditional)}
		rec.Recommendations = []string{fmt.Sprintf("improve credit score to at least %d", th.Conditional)}
		rec.FlagForReview = score >= th.Review
	}

	return model.NewLendingDecision(rec)
}

// Override records a manual decision that supersedes current. Permission
// checks are the caller's responsibility.
func (r *DecisionRouter) Override(current model.LendingDecision, in ManualDecision, actorID string) (model.LendingDecision, error) {
	if strings.TrimSpace(in.OverrideJustification) == "" {
		return model.LendingDecision{}, model.NewValidationError("overrideJustification", "is required for manual decisions")
	}
	if in.Decision.IsZero() {
		return model.LendingDecision{}, model.NewValidationError("decision", "is required")
	}
	if actorID == "" {
		return model.LendingDecision{}, model.NewValidationError("decisionBy", "is required for manual decisions")
	}

	rec := current.Record()
	rec.ID = r.newID()
	rec.Sequence = 0
	rec.Decision = in.Decision
	rec.IsManual = true
	rec.DecisionBy = actorID
	rec.ManualNotes = in.Notes
	rec.OverrideJustification = in.OverrideJustification
	rec.FlagForReview = in.FlagForReview
	rec.ReviewNote = in.ReviewNote
	rec.Supersedes = current.ID()
	rec.Timestamp = r.now()
	rec.Reasons = []string{"manual decision: " + in.OverrideJustification}

	if !in.Decision.Equal(valueobject.DecisionReject) {
		rec.RejectionCode = ""
	}

	if in.Decision.Equal(valueobject.DecisionApprove) {
		details := in.LoanDetails
		if details == nil {
			details = rec.LoanDetails
		}
		if details == nil {
			return model.LendingDecision{}, model.NewValidationError("loanDetails", "are required to approve")
		}
		if !details.Amount.IsPositive() || details.Term <= 0 || details.InterestRate.IsNegative() {
			return model.LendingDecision{}, model.NewValidationError("loanDetails", "amount and term must be positive")
		}
		d := *details
		rec.LoanDetails = &d
	} else {
		rec.LoanDetails = nil
	}

	if in.RiskTierOverride != nil {
		tier := *in.RiskTierOverride
		rec.RiskTier = tier
		rec.RiskTierLabel = tier.Label()
		rec.RiskTierOverride = &tier
	}

	return model.NewLendingDecision(rec)
}

func (r *DecisionRouter) baseRecord(in RouteInput) model.DecisionRecord {
	return model.DecisionRecord{
		ID:                  r.newID(),
		BorrowerID:          in.Profile.BorrowerID,
		BankCode:            in.Policy.BankCode,
		PolicyVersion:       in.Policy.Version,
		LoanType:            in.LoanType,
		Score:               in.Score.Score,
		Classification:      in.Score.Classification,
		RiskTier:            in.Behavioral.RiskTier,
		RiskTierLabel:       in.Behavioral.RiskTierLabel,
		DefaultRiskEstimate: in.Behavioral.DefaultRiskEstimate,
		DTI:                 in.Terms.DTI,
		DTIRating:           in.Terms.DTIBand,
		MaxLoanAmount:       in.Terms.MaxLoanAmount,
		TermOptions:         in.Terms.TermOptions,
		CollateralRequired:  in.Terms.CollateralRequired,
		DecisionBy:          model.SystemActor,
		ScoringDetails: model.ScoringDetails{
			RecessionMode:          in.Terms.RecessionApplied,
			AIEnabled:              in.Policy.AIEnabled,
			EmploymentFloorApplied: in.Behavioral.EmploymentFloorApplied,
			BehavioralScore:        in.Behavioral.Score,
			Penalties:              in.Score.Penalties,
			Bonuses:                in.Score.Bonuses,
		},
		EngineVersion: model.EngineVersion,
		Timestamp:     r.now(),
	}
}

// offer picks the amount and term to approve and notes any capping.
func offer(in RouteInput) (decimal.Decimal, int, []string) {
	var notes []string
	amount := in.Terms.MaxLoanAmount
	if in.RequestedAmount != nil && in.RequestedAmount.IsPositive() {
		if in.RequestedAmount.GreaterThan(amount) {
			notes = append(notes, fmt.Sprintf("requested amount %s capped at policy maximum %s",
				in.RequestedAmount.StringFixed(2), amount.StringFixed(2)))
		} else {
			amount = *in.RequestedAmount
		}
	}

	term := 0
	for _, t := range in.Terms.TermOptions {
		if t == in.RequestedTerm {
			return amount, t, notes
		}
		term = t
	}
	if in.RequestedTerm > 0 && term > 0 {
		notes = append(notes, fmt.Sprintf("requested term %d months not offered; using %d months", in.RequestedTerm, term))
	}
	return amount, term, notes
}

func riskFlags(in RouteInput, amount decimal.Decimal) []valueobject.RiskFlag {
	var flags []valueobject.RiskFlag
	aa := in.Policy.AutoApproval
	if amount.GreaterThan(aa.MaxAmount) {
		flags = append(flags, valueobject.RiskFlagHighAmount)
	}
	if in.Profile.CreditAgeMonths < aa.NewCustomerMonths {
		flags = append(flags, valueobject.RiskFlagNewCustomer)
	}
	if in.Terms.DTI.GreaterThan(in.Policy.BehavioralThresholds.MaxDTI) {
		flags = append(flags, valueobject.RiskFlagHighDTI)
	}
	if in.Behavioral.RiskTier.Equal(valueobject.RiskTierHigh) {
		flags = append(flags, valueobject.RiskFlagHighRiskTier)
	}
	if in.Behavioral.Score.LessThan(in.Policy.RiskLabelThresholds.High) {
		flags = append(flags, valueobject.RiskFlagSevereBehavioralRisk)
	}
	if m := in.Profile.LastDelinquencyMonthsAgo; m != nil && *m <= recentDelinquencyMonths {
		flags = append(flags, valueobject.RiskFlagRecentDelinquency)
	}
	if in.Terms.RecessionApplied {
		flags = append(flags, valueobject.RiskFlagRecessionMode)
	}
	return flags
}

func blockingFlags(aa model.AutoApproval, flags []valueobject.RiskFlag) []valueobject.RiskFlag {
	var out []valueobject.RiskFlag
	for _, f := range flags {
		if aa.RequiresManualReview(f) {
			out = append(out, f)
		}
	}
	return out
}

func signOffCause(aa model.AutoApproval, amount decimal.Decimal, blocking []valueobject.RiskFlag) string {
	switch {
	case !aa.Enabled:
		return "automatic approval disabled"
	case amount.GreaterThan(aa.MaxAmount):
		return fmt.Sprintf("amount %s exceeds auto-approval limit %s", amount.StringFixed(2), aa.MaxAmount.StringFixed(2))
	default:
		names := make([]string, len(blocking))
		for i, f := range blocking {
			names[i] = string(f)
		}
		return "risk flags " + strings.Join(names, ", ")
	}
}

func shortfalls(in RouteInput, th model.ScoreThresholds, maxDTI decimal.Decimal, dtiOK, collateralOK bool) ([]string, []string) {
	var reasons, recs []string
	if in.Score.Score < th.Approve {
		reasons = append(reasons, fmt.Sprintf("score %d is below approval threshold %d", in.Score.Score, th.Approve))
		recs = append(recs, fmt.Sprintf("improve credit score to at least %d", th.Approve))
	}
	if !dtiOK {
		reasons = append(reasons, fmt.Sprintf("debt-to-income ratio %s exceeds maximum %s", in.Terms.DTI.StringFixed(2), maxDTI.StringFixed(2)))
		recs = append(recs, fmt.Sprintf("reduce debt-to-income ratio to %s or below", maxDTI.StringFixed(2)))
	}
	if !collateralOK {
		rules := in.Policy.CollateralRules
		reasons = append(reasons, fmt.Sprintf("collateral is required for %s borrowers", in.Score.Classification))
		recs = append(recs, fmt.Sprintf("provide collateral worth at least %s", rules.MinValue.StringFixed(2)))
	}
	return reasons, recs
}
