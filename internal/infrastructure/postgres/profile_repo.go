package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
	pg "github.com/aman3729/credit-score/pkg/postgres"
)

const profileColumns = `borrower_id, bank_code, monthly_income, total_debt, total_credit,
	credit_utilization, credit_age_months, credit_mix, inquiries, payment_history,
	recent_missed_payments, consecutive_missed_payments, recent_defaults, active_loans,
	last_delinquency_months_ago, employment_status, collateral_value, collateral_quality,
	monthly_savings, monthly_transactions, version, updated_at`

const selectProfileSQL = `SELECT ` + profileColumns + ` FROM borrower_profiles WHERE borrower_id = $1`

// upsertProfileSQL bumps the version unconditionally. Used for seeding and
// intake, never by recalculation.
const upsertProfileSQL = `
	INSERT INTO borrower_profiles (` + profileColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, 1, now())
	ON CONFLICT (borrower_id) DO UPDATE SET
		bank_code                   = EXCLUDED.bank_code,
		monthly_income              = EXCLUDED.monthly_income,
		total_debt                  = EXCLUDED.total_debt,
		total_credit                = EXCLUDED.total_credit,
		credit_utilization          = EXCLUDED.credit_utilization,
		credit_age_months           = EXCLUDED.credit_age_months,
		credit_mix                  = EXCLUDED.credit_mix,
		inquiries                   = EXCLUDED.inquiries,
		payment_history             = EXCLUDED.payment_history,
		recent_missed_payments      = EXCLUDED.recent_missed_payments,
		consecutive_missed_payments = EXCLUDED.consecutive_missed_payments,
		recent_defaults             = EXCLUDED.recent_defaults,
		active_loans                = EXCLUDED.active_loans,
		last_delinquency_months_ago = EXCLUDED.last_delinquency_months_ago,
		employment_status           = EXCLUDED.employment_status,
		collateral_value            = EXCLUDED.collateral_value,
		collateral_quality          = EXCLUDED.collateral_quality,
		monthly_savings             = EXCLUDED.monthly_savings,
		monthly_transactions        = EXCLUDED.monthly_transactions,
		version                     = borrower_profiles.version + 1,
		updated_at                  = now()
	RETURNING version, updated_at`

const insertProfileSQL = `
	INSERT INTO borrower_profiles (` + profileColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, 1, now())
	ON CONFLICT (borrower_id) DO NOTHING`

// updateProfileSQL is guarded by the version that was read ($21).
const updateProfileSQL = `
	UPDATE borrower_profiles SET
		bank_code                   = $2,
		monthly_income              = $3,
		total_debt                  = $4,
		total_credit                = $5,
		credit_utilization          = $6,
		credit_age_months           = $7,
		credit_mix                  = $8,
		inquiries                   = $9,
		payment_history             = $10,
		recent_missed_payments      = $11,
		consecutive_missed_payments = $12,
		recent_defaults             = $13,
		active_loans                = $14,
		last_delinquency_months_ago = $15,
		employment_status           = $16,
		collateral_value            = $17,
		collateral_quality          = $18,
		monthly_savings             = $19,
		monthly_transactions        = $20,
		version                     = version + 1,
		updated_at                  = now()
	WHERE borrower_id = $1 AND version = $21`

// ProfileRepo implements port.BorrowerProfileStore.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

// NewProfileRepo creates a new PostgreSQL-backed borrower profile repository.
func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// FindByID returns the committed profile or model.ErrBorrowerNotFound.
func (r *ProfileRepo) FindByID(ctx context.Context, borrowerID string) (model.BorrowerProfile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, selectProfileSQL, borrowerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BorrowerProfile{}, model.ErrBorrowerNotFound
		}
		return model.BorrowerProfile{}, fmt.Errorf("find borrower profile: %w", err)
	}
	return p, nil
}

// SaveProfile stores p as the next version of the borrower's profile
// regardless of the version it carries.
func (r *ProfileRepo) SaveProfile(ctx context.Context, p model.BorrowerProfile) (model.BorrowerProfile, error) {
	if err := p.Validate(); err != nil {
		return model.BorrowerProfile{}, err
	}
	err := r.pool.QueryRow(ctx, upsertProfileSQL, profileArgs(p)...).Scan(&p.Version, &p.UpdatedAt)
	if err != nil {
		return model.BorrowerProfile{}, fmt.Errorf("save borrower profile: %w", err)
	}
	return p, nil
}

// commitProfile writes p as version p.Version+1, creating the row when
// p.Version is zero. A lost race yields model.ErrConcurrencyConflict.
func commitProfile(ctx context.Context, q pg.Querier, p model.BorrowerProfile) error {
	args := profileArgs(p)
	query := insertProfileSQL
	if p.Version > 0 {
		query = updateProfileSQL
		args = append(args, p.Version)
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("commit borrower profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrConcurrencyConflict
	}
	return nil
}

func profileArgs(p model.BorrowerProfile) []any {
	return []any{
		p.BorrowerID, p.BankCode, p.MonthlyIncome, p.TotalDebt, p.TotalCredit,
		p.CreditUtilization, p.CreditAgeMonths, p.CreditMix, p.Inquiries, p.PaymentHistory,
		p.RecentMissedPayments, p.ConsecutiveMissedPayments, p.RecentDefaults, p.ActiveLoans,
		p.LastDelinquencyMonthsAgo, p.EmploymentStatus.String(), p.CollateralValue, p.CollateralQuality,
		p.MonthlySavings, p.MonthlyTransactions,
	}
}

// scannable is satisfied by both pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanProfile(row scannable) (model.BorrowerProfile, error) {
	var (
		p          model.BorrowerProfile
		employment string
	)
	err := row.Scan(
		&p.BorrowerID, &p.BankCode, &p.MonthlyIncome, &p.TotalDebt, &p.TotalCredit,
		&p.CreditUtilization, &p.CreditAgeMonths, &p.CreditMix, &p.Inquiries, &p.PaymentHistory,
		&p.RecentMissedPayments, &p.ConsecutiveMissedPayments, &p.RecentDefaults, &p.ActiveLoans,
		&p.LastDelinquencyMonthsAgo, &employment, &p.CollateralValue, &p.CollateralQuality,
		&p.MonthlySavings, &p.MonthlyTransactions, &p.Version, &p.UpdatedAt,
	)
	if err != nil {
		return model.BorrowerProfile{}, err
	}
	p.EmploymentStatus = valueobject.EmploymentStatus(employment)
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
