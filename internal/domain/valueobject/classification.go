package valueobject

import "fmt"

// Classification is the score bucket a borrower falls into.
type Classification string

const (
	ClassificationExcellent Classification = "EXCELLENT"
	ClassificationVeryGood  Classification = "VERY_GOOD"
	ClassificationGood      Classification = "GOOD"
	ClassificationFair      Classification = "FAIR"
	ClassificationPoor      Classification = "POOR"
)

// Classifications lists every bucket from best to worst.
var Classifications = []Classification{
	ClassificationExcellent,
	ClassificationVeryGood,
	ClassificationGood,
	ClassificationFair,
	ClassificationPoor,
}

// ParseClassification validates a raw bucket name.
func ParseClassification(s string) (Classification, error) {
	for _, c := range Classifications {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid classification: %q", s)
}

// Rank orders buckets so that a better bucket has a higher rank (POOR=0).
func (c Classification) Rank() int {
	for i, candidate := range Classifications {
		if candidate == c {
			return len(Classifications) - 1 - i
		}
	}
	return -1
}

func (c Classification) String() string { return string(c) }

// LoanType identifies the product a decision is made for.
type LoanType string

const (
	LoanTypePersonal LoanType = "personal"
	LoanTypeBusiness LoanType = "business"
	LoanTypeMortgage LoanType = "mortgage"
	LoanTypeAuto     LoanType = "auto"
)

// ParseLoanType accepts any non-empty lowercase identifier; whether a bank
// offers the product is decided by its policy, not here.
func ParseLoanType(s string) (LoanType, error) {
	if s == "" {
		return "", fmt.Errorf("loan type is required")
	}
	return LoanType(s), nil
}

func (t LoanType) String() string { return string(t) }

// DTIBand buckets a debt-to-income ratio for rate adjustments.
type DTIBand string

const (
	DTIBandLow      DTIBand = "LOW"
	DTIBandModerate DTIBand = "MODERATE"
	DTIBandHigh     DTIBand = "HIGH"
	DTIBandVeryHigh DTIBand = "VERY_HIGH"
)

func (b DTIBand) String() string { return string(b) }
