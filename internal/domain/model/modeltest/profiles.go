// Package modeltest provides borrower and policy builders for tests.
package modeltest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

const BankCode = "BANK-A"

// Policy returns the baseline policy for BankCode.
func Policy() model.PartnerBankPolicy {
	return model.BaselinePolicy(BankCode)
}

// StrongProfile is an established, fully employed borrower with a clean
// record and a 20% debt-to-income ratio. Under Policy it scores EXCELLENT
// with a low behavioral risk.
func StrongProfile(borrowerID string) model.BorrowerProfile {
	return model.BorrowerProfile{
		BorrowerID:          borrowerID,
		BankCode:            BankCode,
		MonthlyIncome:       decimal.NewFromInt(10000),
		TotalDebt:           decimal.NewFromInt(2000),
		TotalCredit:         decimal.NewFromInt(40000),
		CreditUtilization:   decimal.NewFromFloat(0.1),
		CreditAgeMonths:     120,
		CreditMix:           decimal.NewFromFloat(0.8),
		Inquiries:           1,
		PaymentHistory:      decimal.NewFromInt(1),
		ActiveLoans:         1,
		EmploymentStatus:    valueobject.EmploymentEmployed,
		MonthlySavings:      decimal.NewFromInt(1500),
		MonthlyTransactions: 30,
		UpdatedAt:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// FairProfile scores in the FAIR bucket: some utilisation, short history
// and a few inquiries, but no hard-reject conditions.
func FairProfile(borrowerID string) model.BorrowerProfile {
	p := StrongProfile(borrowerID)
	p.CreditUtilization = decimal.NewFromFloat(0.6)
	p.CreditAgeMonths = 36
	p.CreditMix = decimal.NewFromFloat(0.4)
	p.Inquiries = 4
	p.PaymentHistory = decimal.NewFromFloat(0.92)
	p.RecentMissedPayments = 1
	return p
}

// WithCollateral returns a copy of p pledging value at the given quality.
func WithCollateral(p model.BorrowerProfile, value, quality float64) model.BorrowerProfile {
	v := decimal.NewFromFloat(value)
	q := decimal.NewFromFloat(quality)
	p.CollateralValue = &v
	p.CollateralQuality = &q
	return p
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// Dec is shorthand for decimal.NewFromFloat.
func Dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// DecPtr returns a pointer to a decimal of v.
func DecPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
