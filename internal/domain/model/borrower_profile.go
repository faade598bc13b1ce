package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// BorrowerProfile
// ---------------------------------------------------------------------------

// BorrowerProfile is the credit snapshot a decision is computed from.
// Version is the optimistic-locking token of the committed profile.
type BorrowerProfile struct {
	BorrowerID string `json:"borrowerId"`
	BankCode   string `json:"bankCode"`

	MonthlyIncome     decimal.Decimal `json:"monthlyIncome"`
	TotalDebt         decimal.Decimal `json:"totalDebt"`
	TotalCredit       decimal.Decimal `json:"totalCredit"`
	CreditUtilization decimal.Decimal `json:"creditUtilization"`
	CreditAgeMonths   int             `json:"creditAgeMonths"`
	CreditMix         decimal.Decimal `json:"creditMix"`
	Inquiries         int             `json:"inquiries"`
	PaymentHistory    decimal.Decimal `json:"paymentHistory"`

	RecentMissedPayments      int  `json:"recentMissedPayments"`
	ConsecutiveMissedPayments int  `json:"consecutiveMissedPayments"`
	RecentDefaults            int  `json:"recentDefaults"`
	ActiveLoans               int  `json:"activeLoans"`
	LastDelinquencyMonthsAgo  *int `json:"lastDelinquencyMonthsAgo,omitempty"`

	EmploymentStatus valueobject.EmploymentStatus `json:"employmentStatus"`

	CollateralValue     *decimal.Decimal `json:"collateralValue,omitempty"`
	CollateralQuality   *decimal.Decimal `json:"collateralQuality,omitempty"`
	MonthlySavings      decimal.Decimal  `json:"monthlySavings"`
	MonthlyTransactions int              `json:"monthlyTransactions"`

	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfilePatch carries the fields a recalculation may change. Nil fields are
// left untouched.
type ProfilePatch struct {
	MonthlyIncome     *decimal.Decimal
	CollateralValue   *decimal.Decimal
	CollateralQuality *decimal.Decimal
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.MonthlyIncome == nil && p.CollateralValue == nil && p.CollateralQuality == nil
}

// Validate checks ranges and returns the first offending field.
func (b BorrowerProfile) Validate() error {
	if b.BorrowerID == "" {
		return NewValidationError("borrowerId", "is required")
	}
	if !b.MonthlyIncome.IsPositive() {
		return NewValidationError("monthlyIncome", "must be positive")
	}
	for field, v := range map[string]decimal.Decimal{
		"totalDebt":      b.TotalDebt,
		"totalCredit":    b.TotalCredit,
		"monthlySavings": b.MonthlySavings,
	} {
		if v.IsNegative() {
			return NewValidationError(field, "must not be negative")
		}
	}
	for field, v := range map[string]decimal.Decimal{
		"creditUtilization": b.CreditUtilization,
		"creditMix":         b.CreditMix,
		"paymentHistory":    b.PaymentHistory,
	} {
		if v.IsNegative() || v.GreaterThan(one) {
			return NewValidationError(field, "must be within [0, 1]")
		}
	}
	for field, v := range map[string]int{
		"creditAgeMonths":           b.CreditAgeMonths,
		"inquiries":                 b.Inquiries,
		"recentMissedPayments":      b.RecentMissedPayments,
		"consecutiveMissedPayments": b.ConsecutiveMissedPayments,
		"recentDefaults":            b.RecentDefaults,
		"activeLoans":               b.ActiveLoans,
		"monthlyTransactions":       b.MonthlyTransactions,
	} {
		if v < 0 {
			return NewValidationError(field, "must not be negative")
		}
	}
	if b.LastDelinquencyMonthsAgo != nil && *b.LastDelinquencyMonthsAgo < 0 {
		return NewValidationError("lastDelinquencyMonthsAgo", "must not be negative")
	}
	if _, err := valueobject.ParseEmploymentStatus(string(b.EmploymentStatus)); err != nil {
		return NewValidationError("employmentStatus", err.Error())
	}
	if b.CollateralValue != nil {
		if b.CollateralValue.IsNegative() {
			return NewValidationError("collateralValue", "must not be negative")
		}
		if b.CollateralQuality == nil {
			return NewValidationError("collateralQuality", "is required when collateral is pledged")
		}
	}
	if b.CollateralQuality != nil && (b.CollateralQuality.IsNegative() || b.CollateralQuality.GreaterThan(one)) {
		return NewValidationError("collateralQuality", "must be within [0, 1]")
	}
	return nil
}

// DTI returns monthly debt service divided by monthly income.
func (b BorrowerProfile) DTI() (decimal.Decimal, error) {
	if !b.MonthlyIncome.IsPositive() {
		return decimal.Zero, NewValidationError("monthlyIncome", "must be positive to compute DTI")
	}
	return b.TotalDebt.Div(b.MonthlyIncome).Round(4), nil
}

// SavingsRate returns monthly savings as a share of monthly income.
func (b BorrowerProfile) SavingsRate() decimal.Decimal {
	if !b.MonthlyIncome.IsPositive() {
		return decimal.Zero
	}
	return b.MonthlySavings.Div(b.MonthlyIncome)
}

// HasCollateral reports whether collateral of positive value is pledged.
func (b BorrowerProfile) HasCollateral() bool {
	return b.CollateralValue != nil && b.CollateralValue.IsPositive()
}

// Apply returns a copy with the patch applied. The receiver is not modified.
func (b BorrowerProfile) Apply(patch ProfilePatch, now time.Time) (BorrowerProfile, error) {
	next := b
	if patch.MonthlyIncome != nil {
		next.MonthlyIncome = *patch.MonthlyIncome
	}
	if patch.CollateralValue != nil {
		v := *patch.CollateralValue
		next.CollateralValue = &v
	}
	if patch.CollateralQuality != nil {
		q := *patch.CollateralQuality
		next.CollateralQuality = &q
	}
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return b, err
	}
	return next, nil
}
