package valueobject

// RiskFlag marks a condition that may block automatic approval.
type RiskFlag string

const (
	RiskFlagHighAmount           RiskFlag = "HIGH_AMOUNT"
	RiskFlagNewCustomer          RiskFlag = "NEW_CUSTOMER"
	RiskFlagHighDTI              RiskFlag = "HIGH_DTI"
	RiskFlagHighRiskTier         RiskFlag = "HIGH_RISK_TIER"
	RiskFlagSevereBehavioralRisk RiskFlag = "SEVERE_BEHAVIORAL_RISK"
	RiskFlagRecentDelinquency    RiskFlag = "RECENT_DELINQUENCY"
	RiskFlagRecessionMode        RiskFlag = "RECESSION_MODE"
)

// RejectionCode explains why a borrower was rejected.
type RejectionCode string

const (
	RejectConsecutiveMissedPayments RejectionCode = "CONSECUTIVE_MISSED_PAYMENTS"
	RejectExcessiveMissedPayments   RejectionCode = "EXCESSIVE_MISSED_PAYMENTS"
	RejectRecentDelinquency         RejectionCode = "RECENT_DELINQUENCY"
	RejectScoreBelowThreshold       RejectionCode = "SCORE_BELOW_THRESHOLD"
)
