package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EmploymentStatus describes the borrower's source of income.
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentRetired      EmploymentStatus = "retired"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
)

var employmentStability = map[EmploymentStatus]decimal.Decimal{
	EmploymentEmployed:     decimal.NewFromInt(1),
	EmploymentRetired:      decimal.NewFromFloat(0.8),
	EmploymentSelfEmployed: decimal.NewFromFloat(0.7),
	EmploymentStudent:      decimal.NewFromFloat(0.4),
	EmploymentUnemployed:   decimal.Zero,
}

// ParseEmploymentStatus validates a raw employment status.
func ParseEmploymentStatus(s string) (EmploymentStatus, error) {
	es := EmploymentStatus(s)
	if _, ok := employmentStability[es]; !ok {
		return "", fmt.Errorf("invalid employment status: %q", s)
	}
	return es, nil
}

// Stability returns the income-stability factor in [0,1].
func (e EmploymentStatus) Stability() decimal.Decimal {
	return employmentStability[e]
}

// IsStable is false for statuses without a regular income.
func (e EmploymentStatus) IsStable() bool {
	return e != EmploymentUnemployed && e != EmploymentStudent
}

func (e EmploymentStatus) String() string { return string(e) }
