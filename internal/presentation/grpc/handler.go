package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/application/usecase"
)

// DecisionHandler implements DecisionServiceServer on top of the use cases.
type DecisionHandler struct {
	evaluate    *usecase.EvaluateBorrowerUseCase
	manual      *usecase.RecordManualDecisionUseCase
	recalculate *usecase.RecalculateDecisionUseCase
	current     *usecase.GetCurrentDecisionUseCase
	history     *usecase.GetDecisionHistoryUseCase
	validate    *usecase.ValidatePolicyUseCase
	publish     *usecase.PublishPolicyUseCase
	logger      *slog.Logger
}

// UseCases groups the handler's dependencies.
type UseCases struct {
	Evaluate    *usecase.EvaluateBorrowerUseCase
	Manual      *usecase.RecordManualDecisionUseCase
	Recalculate *usecase.RecalculateDecisionUseCase
	Current     *usecase.GetCurrentDecisionUseCase
	History     *usecase.GetDecisionHistoryUseCase
	Validate    *usecase.ValidatePolicyUseCase
	Publish     *usecase.PublishPolicyUseCase
}

// NewDecisionHandler creates a new handler with all use-case dependencies.
func NewDecisionHandler(uc UseCases, logger *slog.Logger) *DecisionHandler {
	return &DecisionHandler{
		evaluate:    uc.Evaluate,
		manual:      uc.Manual,
		recalculate: uc.Recalculate,
		current:     uc.Current,
		history:     uc.History,
		validate:    uc.Validate,
		publish:     uc.Publish,
		logger:      logger,
	}
}

func (h *DecisionHandler) EvaluateBorrower(ctx context.Context, req *dto.EvaluateBorrowerRequest) (*dto.DecisionResponse, error) {
	resp, err := h.evaluate.Execute(ctx, actorFromContext(ctx), *req)
	return respond(ctx, h, "EvaluateBorrower", resp, err)
}

func (h *DecisionHandler) RecordManualDecision(ctx context.Context, req *dto.RecordManualDecisionRequest) (*dto.DecisionResponse, error) {
	resp, err := h.manual.Execute(ctx, actorFromContext(ctx), *req)
	return respond(ctx, h, "RecordManualDecision", resp, err)
}

func (h *DecisionHandler) RecalculateDecision(ctx context.Context, req *dto.RecalculateDecisionRequest) (*dto.DecisionResponse, error) {
	resp, err := h.recalculate.Execute(ctx, actorFromContext(ctx), *req)
	return respond(ctx, h, "RecalculateDecision", resp, err)
}

func (h *DecisionHandler) GetCurrentDecision(ctx context.Context, req *dto.GetCurrentDecisionRequest) (*dto.DecisionResponse, error) {
	resp, err := h.current.Execute(ctx, actorFromContext(ctx), *req)
	return respond(ctx, h, "GetCurrentDecision", resp, err)
}

func (h *DecisionHandler) GetDecisionHistory(ctx context.Context, req *dto.GetDecisionHistoryRequest) (*dto.DecisionHistoryResponse, error) {
	resp, err := h.history.Execute(ctx, actorFromContext(ctx), *req)
	return respond(ctx, h, "GetDecisionHistory", resp, err)
}

func (h *DecisionHandler) ValidatePolicy(ctx context.Context, req *dto.ValidatePolicyRequest) (*dto.PolicyValidationResponse, error) {
	resp, err := h.validate.Execute(ctx, actorFromContext(ctx), *req)
	return respond(ctx, h, "ValidatePolicy", resp, err)
}

func (h *DecisionHandler) PublishPolicy(ctx context.Context, req *dto.PublishPolicyRequest) (*dto.PolicyValidationResponse, error) {
	resp, err := h.publish.Execute(ctx, actorFromContext(ctx), *req)
	return respond(ctx, h, "PublishPolicy", resp, err)
}

// respond converts a use-case result into a gRPC reply. Internal failures
// are logged here since the client only sees a generic status.
func respond[T any](ctx context.Context, h *DecisionHandler, method string, resp T, err error) (*T, error) {
	if err != nil {
		st := toStatus(err)
		if status.Code(st) == codes.Internal {
			h.logger.ErrorContext(ctx, "request failed", "method", method, "error", err)
		}
		return nil, st
	}
	return &resp, nil
}
