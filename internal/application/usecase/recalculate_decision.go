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

// MaxRecalculationAttempts bounds the read-compute-commit loop under
// concurrent updates to the same borrower.
const MaxRecalculationAttempts = 3

// RecalculateDecisionUseCase applies new income or collateral data to the
// stored profile and commits the profile together with a fresh decision.
type RecalculateDecisionUseCase struct {
	policies  port.PolicyStore
	profiles  port.BorrowerProfileStore
	ledger    port.DecisionLedger
	committer port.DecisionCommitter
	pipeline  *service.DecisionPipeline
	observer  DecisionObserver
	logger    *slog.Logger
}

// NewRecalculateDecisionUseCase wires dependencies. observer may be nil.
func NewRecalculateDecisionUseCase(
	policies port.PolicyStore,
	profiles port.BorrowerProfileStore,
	ledger port.DecisionLedger,
	committer port.DecisionCommitter,
	pipeline *service.DecisionPipeline,
	observer DecisionObserver,
	logger *slog.Logger,
) *RecalculateDecisionUseCase {
	return &RecalculateDecisionUseCase{
		policies:  policies,
		profiles:  profiles,
		ledger:    ledger,
		committer: committer,
		pipeline:  pipeline,
		observer:  observerOrNoop(observer),
		logger:    logger,
	}
}

// Execute recalculates and retries on ErrConcurrencyConflict, up to
// MaxRecalculationAttempts in total.
func (uc *RecalculateDecisionUseCase) Execute(
	ctx context.Context,
	actor model.Actor,
	req dto.RecalculateDecisionRequest,
) (resp dto.DecisionResponse, err error) {
	ctx, span := startSpan(ctx, "RecalculateDecision", req.BorrowerID)
	defer func() { endSpan(span, err) }()
	started := time.Now()
	defer func() { uc.observer.ObserveDuration("recalculate", time.Since(started)) }()

	if err := authorize(actor.Capabilities.CanRecalculate, "recalculate decision"); err != nil {
		return dto.DecisionResponse{}, err
	}
	if req.BorrowerID == "" {
		return dto.DecisionResponse{}, model.NewValidationError("borrowerId", "is required")
	}

	patch := model.ProfilePatch{
		MonthlyIncome:     req.MonthlyIncome,
		CollateralValue:   req.CollateralValue,
		CollateralQuality: req.CollateralQuality,
	}

	for attempt := 1; ; attempt++ {
		decision, err := uc.attempt(ctx, req, patch)
		if err == nil {
			recordDecision(uc.observer, decision)
			uc.logger.InfoContext(ctx, "decision recalculated",
				"borrower_id", decision.BorrowerID(),
				"decision", decision.Decision().String(),
				"sequence", decision.Sequence(),
				"attempt", attempt,
			)
			return toDecisionResponse(decision), nil
		}
		if !errors.Is(err, model.ErrConcurrencyConflict) {
			return dto.DecisionResponse{}, err
		}

		uc.observer.ConcurrencyConflict()
		if attempt >= MaxRecalculationAttempts {
			return dto.DecisionResponse{}, fmt.Errorf("recalculate borrower %s after %d attempts: %w", req.BorrowerID, attempt, err)
		}
		uc.logger.WarnContext(ctx, "recalculation conflict, retrying",
			"borrower_id", req.BorrowerID,
			"attempt", attempt,
		)
		if ctx.Err() != nil {
			return dto.DecisionResponse{}, ctx.Err()
		}
	}
}

// attempt runs one read-compute-commit pass.
func (uc *RecalculateDecisionUseCase) attempt(
	ctx context.Context,
	req dto.RecalculateDecisionRequest,
	patch model.ProfilePatch,
) (model.LendingDecision, error) {
	// 1. Load the committed profile; its version guards the commit.
	stored, err := uc.profiles.FindByID(ctx, req.BorrowerID)
	if err != nil {
		return model.LendingDecision{}, fmt.Errorf("load profile: %w", err)
	}

	// 2. Apply the new data to a copy.
	profile, err := stored.Apply(patch, time.Now().UTC())
	if err != nil {
		return model.LendingDecision{}, err
	}

	// 3. Load the policy.
	policy, err := uc.policies.CurrentPolicy(ctx, profile.BankCode)
	if err != nil {
		return model.LendingDecision{}, fmt.Errorf("load policy: %w", err)
	}

	// 4. Resolve the loan type: request, then current decision, then personal.
	current, err := uc.ledger.Latest(ctx, req.BorrowerID)
	hasCurrent := err == nil
	if err != nil && !errors.Is(err, model.ErrDecisionNotFound) {
		return model.LendingDecision{}, fmt.Errorf("load current decision: %w", err)
	}
	fallback := valueobject.LoanTypePersonal
	if hasCurrent && current.LoanType() != "" {
		fallback = current.LoanType()
	}
	loanType, err := parseLoanType(req.LoanType, fallback)
	if err != nil {
		return model.LendingDecision{}, err
	}

	// 5. Recompute.
	decision, err := uc.pipeline.Evaluate(service.EvaluationRequest{
		Profile:         profile,
		Policy:          policy,
		LoanType:        loanType,
		RequestedAmount: req.RequestedAmount,
		RequestedTerm:   req.RequestedTerm,
	})
	if err != nil {
		return model.LendingDecision{}, err
	}
	if hasCurrent {
		decision = decision.Following(current)
	} else {
		decision = decision.WithSequence(1)
	}

	// 6. Commit profile and decision together.
	committed := profile
	committed.Version = stored.Version + 1
	evts := []event.DomainEvent{
		event.NewDecisionRecorded(decision),
		event.NewProfileRecalculated(committed, decision),
	}
	if err := uc.committer.Commit(ctx, profile, decision, evts...); err != nil {
		return model.LendingDecision{}, fmt.Errorf("commit recalculation: %w", err)
	}
	return decision, nil
}
