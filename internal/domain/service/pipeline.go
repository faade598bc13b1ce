package service

import (
	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// EvaluationRequest is one borrower evaluated against one policy.
type EvaluationRequest struct {
	Profile         model.BorrowerProfile
	Policy          model.PartnerBankPolicy
	LoanType        valueobject.LoanType
	RequestedAmount *decimal.Decimal
	RequestedTerm   int
}

// DecisionPipeline runs score, behavioral, policy and routing in order.
// It performs no I/O.
type DecisionPipeline struct {
	score      *ScoreEngine
	behavioral *BehavioralEngine
	evaluator  *PolicyEvaluator
	router     *DecisionRouter
}

// NewDecisionPipeline wires the engines around the given router.
func NewDecisionPipeline(router *DecisionRouter) *DecisionPipeline {
	if router == nil {
		router = NewDecisionRouter(nil, nil)
	}
	return &DecisionPipeline{
		score:      NewScoreEngine(),
		behavioral: NewBehavioralEngine(),
		evaluator:  NewPolicyEvaluator(),
		router:     router,
	}
}

// Evaluate produces a new automatic decision. Errors from any stage are
// returned unchanged and no decision is produced.
func (p *DecisionPipeline) Evaluate(req EvaluationRequest) (model.LendingDecision, error) {
	if err := req.Policy.Validate(); err != nil {
		return model.LendingDecision{}, err
	}

	scored, err := p.score.ComputeScore(req.Profile, req.Policy)
	if err != nil {
		return model.LendingDecision{}, err
	}

	behavioral, err := p.behavioral.ComputeBehavioral(req.Profile, req.Policy)
	if err != nil {
		return model.LendingDecision{}, err
	}

	terms, err := p.evaluator.EvaluatePolicy(scored.Classification, behavioral.RiskTier, req.LoanType, req.Profile, req.Policy)
	if err != nil {
		return model.LendingDecision{}, err
	}

	return p.router.Route(RouteInput{
		Profile:         req.Profile,
		Policy:          req.Policy,
		LoanType:        req.LoanType,
		Score:           scored,
		Behavioral:      behavioral,
		Terms:           terms,
		RequestedAmount: req.RequestedAmount,
		RequestedTerm:   req.RequestedTerm,
	})
}

// Override delegates to the router's manual decision path.
func (p *DecisionPipeline) Override(current model.LendingDecision, in ManualDecision, actorID string) (model.LendingDecision, error) {
	return p.router.Override(current, in, actorID)
}
