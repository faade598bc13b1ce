package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/domain/event"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/port"
	"github.com/aman3729/credit-score/internal/domain/service"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// EvaluateBorrowerUseCase runs the full pipeline for one borrower and
// appends the result to the decision ledger.
type EvaluateBorrowerUseCase struct {
	policies  port.PolicyStore
	profiles  port.BorrowerProfileStore
	ledger    port.DecisionLedger
	committer port.DecisionCommitter
	pipeline  *service.DecisionPipeline
	observer  DecisionObserver
	logger    *slog.Logger
}

// NewEvaluateBorrowerUseCase wires dependencies. observer may be nil.
func NewEvaluateBorrowerUseCase(
	policies port.PolicyStore,
	profiles port.BorrowerProfileStore,
	ledger port.DecisionLedger,
	committer port.DecisionCommitter,
	pipeline *service.DecisionPipeline,
	observer DecisionObserver,
	logger *slog.Logger,
) *EvaluateBorrowerUseCase {
	return &EvaluateBorrowerUseCase{
		policies:  policies,
		profiles:  profiles,
		ledger:    ledger,
		committer: committer,
		pipeline:  pipeline,
		observer:  observerOrNoop(observer),
		logger:    logger,
	}
}

// Execute evaluates the borrower. When req.Profile is set the snapshot is
// stored together with the decision; otherwise the stored profile is used.
func (uc *EvaluateBorrowerUseCase) Execute(
	ctx context.Context,
	actor model.Actor,
	req dto.EvaluateBorrowerRequest,
) (resp dto.DecisionResponse, err error) {
	ctx, span := startSpan(ctx, "EvaluateBorrower", req.BorrowerID)
	defer func() { endSpan(span, err) }()
	started := time.Now()
	defer func() { uc.observer.ObserveDuration("evaluate", time.Since(started)) }()

	// 1. Check the caller may evaluate.
	if err := authorize(actor.Capabilities.CanEvaluate, "evaluate borrower"); err != nil {
		return dto.DecisionResponse{}, err
	}
	if req.BorrowerID == "" {
		return dto.DecisionResponse{}, model.NewValidationError("borrowerId", "is required")
	}
	loanType, err := parseLoanType(req.LoanType, valueobject.LoanTypePersonal)
	if err != nil {
		return dto.DecisionResponse{}, err
	}

	// 2. Resolve the profile: a pushed snapshot or the stored one.
	now := time.Now().UTC()
	stored, err := uc.profiles.FindByID(ctx, req.BorrowerID)
	switch {
	case errors.Is(err, model.ErrBorrowerNotFound) && req.Profile != nil:
		// first snapshot for this borrower
	case err != nil:
		return dto.DecisionResponse{}, fmt.Errorf("load profile: %w", err)
	}
	profile := stored
	if req.Profile != nil {
		profile, err = toProfile(req.BorrowerID, *req.Profile, now)
		if err != nil {
			return dto.DecisionResponse{}, err
		}
		profile.Version = stored.Version
	}

	// 3. Load the partner bank policy.
	policy, err := uc.policies.CurrentPolicy(ctx, profile.BankCode)
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("load policy: %w", err)
	}

	// 4. Run the engines.
	decision, err := uc.pipeline.Evaluate(service.EvaluationRequest{
		Profile:         profile,
		Policy:          policy,
		LoanType:        loanType,
		RequestedAmount: req.RequestedAmount,
		RequestedTerm:   req.RequestedTerm,
	})
	if err != nil {
		return dto.DecisionResponse{}, err
	}

	// 5. Place it after the current decision, if any.
	decision, err = placeInLedger(ctx, uc.ledger, decision)
	if err != nil {
		return dto.DecisionResponse{}, err
	}

	// 6. Persist the decision and its event atomically.
	evt := event.NewDecisionRecorded(decision)
	if req.Profile != nil {
		err = uc.committer.Commit(ctx, profile, decision, evt)
	} else {
		err = uc.ledger.Append(ctx, decision, evt)
	}
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("record decision: %w", err)
	}

	recordDecision(uc.observer, decision)
	uc.logger.InfoContext(ctx, "borrower evaluated",
		"borrower_id", decision.BorrowerID(),
		"decision", decision.Decision().String(),
		"score", decision.Score(),
		"sequence", decision.Sequence(),
	)

	return toDecisionResponse(decision), nil
}

// placeInLedger sequences decision after the borrower's latest entry.
func placeInLedger(ctx context.Context, ledger port.DecisionLedger, decision model.LendingDecision) (model.LendingDecision, error) {
	current, err := ledger.Latest(ctx, decision.BorrowerID())
	switch {
	case errors.Is(err, model.ErrDecisionNotFound):
		return decision.WithSequence(1), nil
	case err != nil:
		return model.LendingDecision{}, fmt.Errorf("load current decision: %w", err)
	}
	return decision.Following(current), nil
}
