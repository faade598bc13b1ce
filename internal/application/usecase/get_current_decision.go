package usecase

import (
	"context"
	"fmt"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/port"
)

// GetCurrentDecisionUseCase returns the latest ledger entry of a borrower.
type GetCurrentDecisionUseCase struct {
	ledger port.DecisionLedger
}

func NewGetCurrentDecisionUseCase(ledger port.DecisionLedger) *GetCurrentDecisionUseCase {
	return &GetCurrentDecisionUseCase{ledger: ledger}
}

func (uc *GetCurrentDecisionUseCase) Execute(
	ctx context.Context,
	actor model.Actor,
	req dto.GetCurrentDecisionRequest,
) (dto.DecisionResponse, error) {
	if err := authorize(actor.Capabilities.CanViewDecisions, "get current decision"); err != nil {
		return dto.DecisionResponse{}, err
	}
	if req.BorrowerID == "" {
		return dto.DecisionResponse{}, model.NewValidationError("borrowerId", "is required")
	}

	current, err := uc.ledger.Latest(ctx, req.BorrowerID)
	if err != nil {
		return dto.DecisionResponse{}, fmt.Errorf("get current decision: %w", err)
	}
	return toDecisionResponse(current), nil
}
