package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/domain/event"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/port"
	"github.com/aman3729/credit-score/internal/domain/service"
)

// RecordManualDecisionUseCase appends a lender's override on top of the
// borrower's current decision.
type RecordManualDecisionUseCase struct {
	ledger   port.DecisionLedger
	pipeline *service.DecisionPipeline
	observer DecisionObserver
	logger   *slog.Logger
}

// NewRecordManualDecisionUseCase wires dependencies. observer may be nil.
func NewRecordManualDecisionUseCase(
	ledger port.DecisionLedger,
	pipeline *service.DecisionPipeline,
	observer DecisionObserver,
	logger *slog.Logger,
) *RecordManualDecisionUseCase {
	return &RecordManualDecisionUseCase{
		ledger:   ledger,
		pipeline: pipeline,
		observer: observerOrNoop(observer),
		logger:   logger,
	}
}

// Execute records the override. The superseded decision stays in the
// ledger unchanged.
func (uc *RecordManualDecisionUseCase) Execute(
	ctx context.Context,
	actor model.Actor,
	req dto.RecordManualDecisionRequest,
) (resp dto.DecisionResponse, err error) {
	ctx, span := startSpan(ctx, "RecordManualDecision", req.BorrowerID)
	defer func() { endSpan(span, err) }()

	// 1. Only lenders may override.
	if err := authorize(actor.Capabilities.CanOverrideDecision, "record manual decision"); err != nil {
		return dto.DecisionResponse{}, err
	}
	if req.BorrowerID == "" {
		return dto.DecisionResponse{}, model.NewValidationError("borrowerId", "is required")
	}
	in, err := toManualDecision(req)
	if err != nil {
		return dto.DecisionResponse{}, err
	}

	// 2. Load the decision being superseded.
	current, err := uc.ledger.Latest(ctx, req.BorrowerID)
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("load current decision: %w", err)
	}

	// 3. Build the manual decision.
	manual, err := uc.pipeline.Override(current, in, actor.ID)
	if err != nil {
		return dto.DecisionResponse{}, err
	}
	manual = manual.Following(current)

	// 4. Append with its event.
	if err := uc.ledger.Append(ctx, manual, event.NewDecisionOverridden(manual)); err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("record manual decision: %w", err)
	}

	recordDecision(uc.observer, manual)
	uc.logger.InfoContext(ctx, "manual decision recorded",
		"borrower_id", manual.BorrowerID(),
		"decision", manual.Decision().String(),
		"decision_by", manual.DecisionBy(),
		"supersedes", manual.Supersedes(),
	)

	return toDecisionResponse(manual), nil
}
