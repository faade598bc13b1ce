package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/port"
)

// ValidatePolicyUseCase checks a raw policy document, or the policy a bank
// currently has on file. Configuration problems are reported in the
// response rather than as errors.
type ValidatePolicyUseCase struct {
	policies port.PolicyStore
	parser   port.PolicyDocumentParser
}

func NewValidatePolicyUseCase(policies port.PolicyStore, parser port.PolicyDocumentParser) *ValidatePolicyUseCase {
	return &ValidatePolicyUseCase{policies: policies, parser: parser}
}

func (uc *ValidatePolicyUseCase) Execute(
	ctx context.Context,
	actor model.Actor,
	req dto.ValidatePolicyRequest,
) (dto.PolicyValidationResponse, error) {
	if err := authorize(actor.Capabilities.CanViewConfig, "validate policy"); err != nil {
		return dto.PolicyValidationResponse{}, err
	}

	var (
		policy model.PartnerBankPolicy
		err    error
	)
	switch {
	case len(req.Document) > 0:
		policy, err = uc.parser.Parse(req.Document)
	case req.BankCode != "":
		policy, err = uc.policies.CurrentPolicy(ctx, req.BankCode)
		if err == nil {
			err = policy.Validate()
		}
	default:
		return dto.PolicyValidationResponse{}, model.NewValidationError("document", "a policy document or bank code is required")
	}

	return toValidationResponse(policy, err)
}

// PublishPolicyUseCase stores a validated policy document as the bank's new
// current version.
type PublishPolicyUseCase struct {
	parser    port.PolicyDocumentParser
	publisher port.PolicyPublisher
	logger    *slog.Logger
}

func NewPublishPolicyUseCase(parser port.PolicyDocumentParser, publisher port.PolicyPublisher, logger *slog.Logger) *PublishPolicyUseCase {
	return &PublishPolicyUseCase{parser: parser, publisher: publisher, logger: logger}
}

func (uc *PublishPolicyUseCase) Execute(
	ctx context.Context,
	actor model.Actor,
	req dto.PublishPolicyRequest,
) (dto.PolicyValidationResponse, error) {
	if err := authorize(actor.Capabilities.CanManagePolicy, "publish policy"); err != nil {
		return dto.PolicyValidationResponse{}, err
	}

	policy, err := uc.parser.Parse(req.Document)
	if err != nil {
		return dto.PolicyValidationResponse{}, err
	}
	if err := uc.publisher.Publish(ctx, policy); err != nil {
		return dto.PolicyValidationResponse{}, fmt.Errorf("publish policy: %w", err)
	}

	uc.logger.InfoContext(ctx, "policy published",
		"bank_code", policy.BankCode,
		"version", policy.Version,
		"published_by", actor.ID,
	)
	return toValidationResponse(policy, nil)
}

func toValidationResponse(policy model.PartnerBankPolicy, err error) (dto.PolicyValidationResponse, error) {
	var ce *model.ConfigurationError
	if errors.As(err, &ce) {
		return dto.PolicyValidationResponse{
			Valid:    false,
			BankCode: policy.BankCode,
			Version:  policy.Version,
			Field:    ce.Field,
			Reason:   ce.Reason,
		}, nil
	}
	if err != nil {
		return dto.PolicyValidationResponse{}, err
	}

	resp := dto.PolicyValidationResponse{
		Valid:    true,
		BankCode: policy.BankCode,
		Version:  policy.Version,
	}
	for _, lt := range policy.LoanTypes() {
		resp.LoanTypes = append(resp.LoanTypes, lt.String())
	}
	return resp, nil
}
