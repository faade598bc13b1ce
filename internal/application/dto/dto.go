package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// BorrowerProfileInput is a profile snapshot pushed by the borrower profile
// adapter. When supplied with an evaluation it replaces the stored profile.
// Pointer fields without omitempty are required; nil means the adapter did
// not send them.
type BorrowerProfileInput struct {
	BankCode                  string           `json:"bank_code"`
	MonthlyIncome             *decimal.Decimal `json:"monthly_income"`
	TotalDebt                 *decimal.Decimal `json:"total_debt"`
	TotalCredit               *decimal.Decimal `json:"total_credit"`
	CreditUtilization         *decimal.Decimal `json:"credit_utilization"`
	CreditAgeMonths           *int             `json:"credit_age_months"`
	CreditMix                 *decimal.Decimal `json:"credit_mix"`
	Inquiries                 *int             `json:"inquiries"`
	PaymentHistory            *decimal.Decimal `json:"payment_history"`
	RecentMissedPayments      *int             `json:"recent_missed_payments"`
	ConsecutiveMissedPayments int              `json:"consecutive_missed_payments,omitempty"`
	RecentDefaults            *int             `json:"recent_defaults"`
	ActiveLoans               *int             `json:"active_loans"`
	LastDelinquencyMonthsAgo  *int             `json:"last_delinquency_months_ago,omitempty"`
	EmploymentStatus          string           `json:"employment_status"`
	CollateralValue           *decimal.Decimal `json:"collateral_value,omitempty"`
	CollateralQuality         *decimal.Decimal `json:"collateral_quality,omitempty"`
	MonthlySavings            decimal.Decimal  `json:"monthly_savings,omitempty"`
	MonthlyTransactions       int              `json:"monthly_transactions,omitempty"`
}

// EvaluateBorrowerRequest asks for a fresh automatic decision.
type EvaluateBorrowerRequest struct {
	BorrowerID      string                `json:"borrower_id"`
	LoanType        string                `json:"loan_type"`
	RequestedAmount *decimal.Decimal      `json:"requested_amount,omitempty"`
	RequestedTerm   int                   `json:"requested_term,omitempty"`
	Profile         *BorrowerProfileInput `json:"profile,omitempty"`
}

// LoanDetailsDTO carries offered or manually granted loan terms.
type LoanDetailsDTO struct {
	Amount       decimal.Decimal `json:"amount"`
	Term         int             `json:"term"`
	InterestRate decimal.Decimal `json:"interest_rate"`
}

// RecordManualDecisionRequest carries a lender's override.
type RecordManualDecisionRequest struct {
	BorrowerID            string          `json:"borrower_id"`
	Decision              string          `json:"decision"`
	Notes                 string          `json:"notes,omitempty"`
	LoanDetails           *LoanDetailsDTO `json:"loan_details,omitempty"`
	RiskTierOverride      string          `json:"risk_tier_override,omitempty"`
	OverrideJustification string          `json:"override_justification"`
	FlagForReview         bool            `json:"flag_for_review,omitempty"`
	ReviewNote            string          `json:"review_note,omitempty"`
}

// RecalculateDecisionRequest carries new income or collateral data.
type RecalculateDecisionRequest struct {
	BorrowerID        string           `json:"borrower_id"`
	MonthlyIncome     *decimal.Decimal `json:"monthly_income,omitempty"`
	CollateralValue   *decimal.Decimal `json:"collateral_value,omitempty"`
	CollateralQuality *decimal.Decimal `json:"collateral_quality,omitempty"`
	LoanType          string           `json:"loan_type,omitempty"`
	RequestedAmount   *decimal.Decimal `json:"requested_amount,omitempty"`
	RequestedTerm     int              `json:"requested_term,omitempty"`
}

// GetCurrentDecisionRequest identifies a borrower.
type GetCurrentDecisionRequest struct {
	BorrowerID string `json:"borrower_id"`
}

// GetDecisionHistoryRequest pages through a borrower's ledger. Pass the
// previous response's NextAfterSequence to continue.
type GetDecisionHistoryRequest struct {
	BorrowerID    string `json:"borrower_id"`
	AfterSequence int    `json:"after_sequence"`
	Limit         int    `json:"limit"`
}

// ValidatePolicyRequest checks either a raw policy document or, when
// Document is empty, the stored policy of BankCode.
type ValidatePolicyRequest struct {
	BankCode string `json:"bank_code,omitempty"`
	Document []byte `json:"document,omitempty"`
}

// PublishPolicyRequest stores a raw policy document as a new version.
type PublishPolicyRequest struct {
	Document []byte `json:"document"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// AdjustmentDTO is a named score penalty or bonus.
type AdjustmentDTO struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// DecisionResponse is the external representation of a lending decision.
type DecisionResponse struct {
	ID                    string          `json:"id"`
	BorrowerID            string          `json:"borrower_id"`
	Sequence              int             `json:"sequence"`
	BankCode              string          `json:"bank_code"`
	PolicyVersion         int             `json:"policy_version"`
	LoanType              string          `json:"loan_type"`
	Decision              string          `json:"decision"`
	Score                 int             `json:"score"`
	Classification        string          `json:"classification"`
	RiskTier              string          `json:"risk_tier"`
	RiskTierLabel         string          `json:"risk_tier_label"`
	DefaultRiskEstimate   decimal.Decimal `json:"default_risk_estimate"`
	BehavioralScore       decimal.Decimal `json:"behavioral_score"`
	DTI                   decimal.Decimal `json:"dti"`
	DTIRating             string          `json:"dti_rating"`
	LoanDetails           *LoanDetailsDTO `json:"loan_details,omitempty"`
	MaxLoanAmount         decimal.Decimal `json:"max_loan_amount"`
	TermOptions           []int           `json:"term_options"`
	CollateralRequired    bool            `json:"collateral_required"`
	Reasons               []string        `json:"reasons"`
	Recommendations       []string        `json:"recommendations"`
	RiskFlags             []string        `json:"risk_flags"`
	RejectionCode         string          `json:"rejection_code,omitempty"`
	Penalties             []AdjustmentDTO `json:"penalties"`
	Bonuses               []AdjustmentDTO `json:"bonuses"`
	RecessionMode         bool            `json:"recession_mode"`
	IsManual              bool            `json:"is_manual"`
	DecisionBy            string          `json:"decision_by"`
	ManualNotes           string          `json:"manual_notes,omitempty"`
	RiskTierOverride      string          `json:"risk_tier_override,omitempty"`
	OverrideJustification string          `json:"override_justification,omitempty"`
	FlagForReview         bool            `json:"flag_for_review"`
	ReviewNote            string          `json:"review_note,omitempty"`
	Supersedes            string          `json:"supersedes,omitempty"`
	EngineVersion         string          `json:"engine_version"`
	Timestamp             time.Time       `json:"timestamp"`
}

// DecisionHistoryResponse is one page of a borrower's ledger, oldest first.
type DecisionHistoryResponse struct {
	BorrowerID        string             `json:"borrower_id"`
	Decisions         []DecisionResponse `json:"decisions"`
	NextAfterSequence int                `json:"next_after_sequence"`
	HasMore           bool               `json:"has_more"`
}

// PolicyValidationResponse reports whether a policy is usable.
type PolicyValidationResponse struct {
	Valid     bool     `json:"valid"`
	BankCode  string   `json:"bank_code,omitempty"`
	Version   int      `json:"version,omitempty"`
	LoanTypes []string `json:"loan_types,omitempty"`
	Field     string   `json:"field,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}
