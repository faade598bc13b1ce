package model

import (
	"github.com/shopspring/decimal"

	"github.com/aman3729/credit-score/internal/domain/valueobject"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// BaselinePolicy returns a complete, valid policy that partner banks start
// from when onboarding. Callers edit and republish it; the engine itself
// never falls back to these values.
func BaselinePolicy(bankCode string) PartnerBankPolicy {
	caps := func(excellent, veryGood, good, fair, poor float64) map[valueobject.Classification]decimal.Decimal {
		return map[valueobject.Classification]decimal.Decimal{
			valueobject.ClassificationExcellent: dec(excellent),
			valueobject.ClassificationVeryGood:  dec(veryGood),
			valueobject.ClassificationGood:      dec(good),
			valueobject.ClassificationFair:      dec(fair),
			valueobject.ClassificationPoor:      dec(poor),
		}
	}

	return PartnerBankPolicy{
		BankCode: bankCode,
		Version:  1,

		ScoreBounds:         ScoreBounds{Min: 300, Max: 850},
		ClassificationBands: ClassificationBands{Excellent: 800, VeryGood: 740, Good: 670, Fair: 580},
		ScoringWeights: ScoringWeights{
			PaymentHistory:    dec(0.35),
			CreditUtilization: dec(0.30),
			CreditAge:         dec(0.15),
			CreditMix:         dec(0.10),
			Inquiries:         dec(0.10),
		},
		Penalties: Penalties{
			RecentDefaults:       50,
			MissedPaymentsLast12: CountPenalty{Threshold: 2, Penalty: 30},
			LowOnTimeRate:        RatioPenalty{Threshold: dec(0.9), Penalty: 40},
			HighInquiries:        CountPenalty{Threshold: 6, Penalty: 20},
		},
		Bonuses: Bonuses{
			PerfectPaymentRate:    15,
			GoodCreditMix:         RatioBonus{Threshold: dec(0.6), Points: 10},
			HighTransactionVolume: CountBonus{Threshold: 40, Points: 5},
		},
		RejectionRules: RejectionRules{
			AllowConsecutiveMissedPayments: false,
			MaxMissedPayments12Mo:          3,
			MinMonthsSinceLastDelinquency:  6,
		},

		BehavioralWeights: BehavioralWeights{
			Capacity:   dec(0.30),
			Capital:    dec(0.20),
			Collateral: dec(0.10),
			Conditions: dec(0.15),
			Character:  dec(0.25),
		},
		SubFactors: SubFactorWeights{
			CashFlow:              dec(0.30),
			IncomeStability:       dec(0.20),
			DiscretionarySpending: dec(0.15),
			BudgetingConsistency:  dec(0.20),
			SavingsConsistency:    dec(0.15),
		},
		BehavioralThresholds: BehavioralThresholds{
			MaxDTI:                   dec(0.43),
			MaxDTIWithCollateral:     dec(0.50),
			MinSavingsRate:           dec(0.10),
			StableEmploymentRequired: true,
		},
		RiskLabelThresholds: RiskLabelThresholds{Low: dec(70), Moderate: dec(45), High: dec(25)},

		LendingPolicy: map[valueobject.LoanType]LoanTypePolicy{
			valueobject.LoanTypePersonal: {
				ScoreThresholds: ScoreThresholds{Approve: 700, Conditional: 620, Review: 560},
				LoanAmountCaps:  caps(50000, 35000, 20000, 10000, 0),
				TermOptions:     []int{12, 24, 36, 48, 60},
			},
			valueobject.LoanTypeBusiness: {
				ScoreThresholds:   ScoreThresholds{Approve: 720, Conditional: 650, Review: 600},
				LoanAmountCaps:    caps(250000, 150000, 75000, 25000, 0),
				IncomeMultipliers: caps(5, 4, 3, 2, 0),
				TermOptions:       []int{12, 24, 36, 60, 84},
			},
		},
		InterestRatePolicy: InterestRatePolicy{
			BaseRate: dec(12),
			MaxRate:  dec(30),
			RiskAdjustments: map[valueobject.Classification]decimal.Decimal{
				valueobject.ClassificationExcellent: dec(-2),
				valueobject.ClassificationVeryGood:  dec(-1),
				valueobject.ClassificationGood:      decimal.Zero,
				valueobject.ClassificationFair:      dec(2),
				valueobject.ClassificationPoor:      dec(4),
			},
			DTIAdjustments: map[valueobject.DTIBand]decimal.Decimal{
				valueobject.DTIBandLow:      dec(-1),
				valueobject.DTIBandModerate: decimal.Zero,
				valueobject.DTIBandHigh:     dec(1.5),
				valueobject.DTIBandVeryHigh: dec(3),
			},
			DTIBands:            DTIBands{Low: dec(0.20), Moderate: dec(0.36), High: dec(0.43)},
			RecessionAdjustment: decimal.Zero,
		},
		CollateralRules: CollateralRules{
			RequiredForBuckets:        []valueobject.Classification{valueobject.ClassificationPoor},
			MinValue:                  dec(1000),
			LoanToValueRatio:          dec(0.7),
			QualityThreshold:          dec(0.6),
			RecessionQualityThreshold: dec(0.75),
			RecessionDiscount:         dec(0.2),
			MaxCapIncrease:            dec(25000),
		},
		RecessionMode: RecessionMode{
			Enabled:            false,
			RateIncrease:       dec(2),
			MaxAmountReduction: dec(0.85),
			MaxTerm:            36,
		},
		AutoApproval: AutoApproval{
			Enabled:           true,
			MaxAmount:         dec(50000),
			NewCustomerMonths: 6,
			RequireManualReviewFlags: []valueobject.RiskFlag{
				valueobject.RiskFlagHighAmount,
				valueobject.RiskFlagNewCustomer,
				valueobject.RiskFlagHighRiskTier,
				valueobject.RiskFlagSevereBehavioralRisk,
				valueobject.RiskFlagRecentDelinquency,
			},
		},
	}
}
