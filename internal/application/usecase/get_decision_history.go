package usecase

import (
	"context"
	"fmt"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/port"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// GetDecisionHistoryUseCase pages through a borrower's ledger in sequence
// order. Paging is restartable from any sequence and always terminates.
type GetDecisionHistoryUseCase struct {
	ledger port.DecisionLedger
}

func NewGetDecisionHistoryUseCase(ledger port.DecisionLedger) *GetDecisionHistoryUseCase {
	return &GetDecisionHistoryUseCase{ledger: ledger}
}

func (uc *GetDecisionHistoryUseCase) Execute(
	ctx context.Context,
	actor model.Actor,
	req dto.GetDecisionHistoryRequest,
) (dto.DecisionHistoryResponse, error) {
	if err := authorize(actor.Capabilities.CanViewDecisions, "get decision history"); err != nil {
		return dto.DecisionHistoryResponse{}, err
	}
	if req.BorrowerID == "" {
		return dto.DecisionHistoryResponse{}, model.NewValidationError("borrowerId", "is required")
	}
	if req.AfterSequence < 0 {
		return dto.DecisionHistoryResponse{}, model.NewValidationError("afterSequence", "must not be negative")
	}

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	// One extra row tells whether another page exists.
	decisions, err := uc.ledger.History(ctx, req.BorrowerID, req.AfterSequence, limit+1)
	if err != nil {
		return dto.DecisionHistoryResponse{}, fmt.Errorf("get decision history: %w", err)
	}

	resp := dto.DecisionHistoryResponse{
		BorrowerID:        req.BorrowerID,
		Decisions:         make([]dto.DecisionResponse, 0, limit),
		NextAfterSequence: req.AfterSequence,
	}
	if len(decisions) > limit {
		decisions = decisions[:limit]
		resp.HasMore = true
	}
	for _, d := range decisions {
		resp.Decisions = append(resp.Decisions, toDecisionResponse(d))
		resp.NextAfterSequence = d.Sequence()
	}
	return resp, nil
}
