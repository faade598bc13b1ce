package usecase

import (
	"time"

	"github.com/aman3729/credit-score/internal/application/dto"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/service"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// toDecisionResponse maps a decision to its response DTO.
func toDecisionResponse(d model.LendingDecision) dto.DecisionResponse {
	rec := d.Record()

	resp := dto.DecisionResponse{
		ID:                    rec.ID,
		BorrowerID:            rec.BorrowerID,
		Sequence:              rec.Sequence,
		BankCode:              rec.BankCode,
		PolicyVersion:         rec.PolicyVersion,
		LoanType:              rec.LoanType.String(),
		Decision:              rec.Decision.String(),
		Score:                 rec.Score,
		Classification:        rec.Classification.String(),
		RiskTier:              rec.RiskTier.String(),
		RiskTierLabel:         rec.RiskTierLabel,
		DefaultRiskEstimate:   rec.DefaultRiskEstimate,
		BehavioralScore:       rec.ScoringDetails.BehavioralScore,
		DTI:                   rec.DTI,
		DTIRating:             rec.DTIRating.String(),
		MaxLoanAmount:         rec.MaxLoanAmount,
		TermOptions:           rec.TermOptions,
		CollateralRequired:    rec.CollateralRequired,
		Reasons:               rec.Reasons,
		Recommendations:       rec.Recommendations,
		RiskFlags:             make([]string, len(rec.RiskFlags)),
		RejectionCode:         string(rec.RejectionCode),
		Penalties:             toAdjustments(rec.ScoringDetails.Penalties),
		Bonuses:               toAdjustments(rec.ScoringDetails.Bonuses),
		RecessionMode:         rec.ScoringDetails.RecessionMode,
		IsManual:              rec.IsManual,
		DecisionBy:            rec.DecisionBy,
		ManualNotes:           rec.ManualNotes,
		OverrideJustification: rec.OverrideJustification,
		FlagForReview:         rec.FlagForReview,
		ReviewNote:            rec.ReviewNote,
		Supersedes:            rec.Supersedes,
		EngineVersion:         rec.EngineVersion,
		Timestamp:             rec.Timestamp,
	}
	for i, f := range rec.RiskFlags {
		resp.RiskFlags[i] = string(f)
	}
	if rec.LoanDetails != nil {
		resp.LoanDetails = &dto.LoanDetailsDTO{
			Amount:       rec.LoanDetails.Amount,
			Term:         rec.LoanDetails.Term,
			InterestRate: rec.LoanDetails.InterestRate,
		}
	}
	if rec.RiskTierOverride != nil {
		resp.RiskTierOverride = rec.RiskTierOverride.String()
	}
	return resp
}

func toAdjustments(in []model.Adjustment) []dto.AdjustmentDTO {
	out := make([]dto.AdjustmentDTO, len(in))
	for i, a := range in {
		out[i] = dto.AdjustmentDTO{Name: a.Name, Points: a.Points}
	}
	return out
}

// toProfile builds a profile snapshot from adapter input. Required fields
// are checked in profile order so the first missing one is reported.
func toProfile(borrowerID string, in dto.BorrowerProfileInput, now time.Time) (model.BorrowerProfile, error) {
	if in.BankCode == "" {
		return model.BorrowerProfile{}, model.NewValidationError("bankCode", "is required")
	}
	for _, f := range []struct {
		name    string
		missing bool
	}{
		{"monthlyIncome", in.MonthlyIncome == nil},
		{"totalDebt", in.TotalDebt == nil},
		{"totalCredit", in.TotalCredit == nil},
		{"creditUtilization", in.CreditUtilization == nil},
		{"creditAgeMonths", in.CreditAgeMonths == nil},
		{"creditMix", in.CreditMix == nil},
		{"inquiries", in.Inquiries == nil},
		{"paymentHistory", in.PaymentHistory == nil},
		{"recentMissedPayments", in.RecentMissedPayments == nil},
		{"recentDefaults", in.RecentDefaults == nil},
		{"activeLoans", in.ActiveLoans == nil},
		{"employmentStatus", in.EmploymentStatus == ""},
	} {
		if f.missing {
			return model.BorrowerProfile{}, model.NewValidationError(f.name, "is required")
		}
	}
	status, err := valueobject.ParseEmploymentStatus(in.EmploymentStatus)
	if err != nil {
		return model.BorrowerProfile{}, model.NewValidationError("employmentStatus", err.Error())
	}

	p := model.BorrowerProfile{
		BorrowerID:                borrowerID,
		BankCode:                  in.BankCode,
		MonthlyIncome:             *in.MonthlyIncome,
		TotalDebt:                 *in.TotalDebt,
		TotalCredit:               *in.TotalCredit,
		CreditUtilization:         *in.CreditUtilization,
		CreditAgeMonths:           *in.CreditAgeMonths,
		CreditMix:                 *in.CreditMix,
		Inquiries:                 *in.Inquiries,
		PaymentHistory:            *in.PaymentHistory,
		RecentMissedPayments:      *in.RecentMissedPayments,
		ConsecutiveMissedPayments: in.ConsecutiveMissedPayments,
		RecentDefaults:            *in.RecentDefaults,
		ActiveLoans:               *in.ActiveLoans,
		LastDelinquencyMonthsAgo:  in.LastDelinquencyMonthsAgo,
		EmploymentStatus:          status,
		CollateralValue:           in.CollateralValue,
		CollateralQuality:         in.CollateralQuality,
		MonthlySavings:            in.MonthlySavings,
		MonthlyTransactions:       in.MonthlyTransactions,
		UpdatedAt:                 now,
	}
	if err := p.Validate(); err != nil {
		return model.BorrowerProfile{}, err
	}
	return p, nil
}

// toManualDecision parses a manual decision request.
func toManualDecision(req dto.RecordManualDecisionRequest) (service.ManualDecision, error) {
	state, err := valueobject.NewDecisionState(req.Decision)
	if err != nil {
		return service.ManualDecision{}, model.NewValidationError("decision", err.Error())
	}

	in := service.ManualDecision{
		Decision:              state,
		Notes:                 req.Notes,
		OverrideJustification: req.OverrideJustification,
		FlagForReview:         req.FlagForReview,
		ReviewNote:            req.ReviewNote,
	}
	if req.LoanDetails != nil {
		in.LoanDetails = &model.LoanDetails{
			Amount:       req.LoanDetails.Amount,
			Term:         req.LoanDetails.Term,
			InterestRate: req.LoanDetails.InterestRate,
		}
	}
	if req.RiskTierOverride != "" {
		tier, err := valueobject.NewRiskTier(req.RiskTierOverride)
		if err != nil {
			return service.ManualDecision{}, model.NewValidationError("riskTierOverride", err.Error())
		}
		in.RiskTierOverride = &tier
	}
	return in, nil
}

// parseLoanType returns fallback when raw is empty.
func parseLoanType(raw string, fallback valueobject.LoanType) (valueobject.LoanType, error) {
	if raw == "" {
		return fallback, nil
	}
	lt, err := valueobject.ParseLoanType(raw)
	if err != nil {
		return "", model.NewValidationError("loanType", err.Error())
	}
	return lt, nil
}
