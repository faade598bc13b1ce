package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aman3729/credit-score/internal/domain/model"
	pg "github.com/aman3729/credit-score/pkg/postgres"
)

const currentPolicySQL = `
	SELECT document FROM partner_bank_policies
	WHERE bank_code = $1
	ORDER BY version DESC
	LIMIT 1`

// publishPolicySQL refuses versions at or below the latest stored one.
const publishPolicySQL = `
	INSERT INTO partner_bank_policies (bank_code, version, document)
	SELECT $1::text, $2::int, $3::jsonb
	WHERE NOT EXISTS (
		SELECT 1 FROM partner_bank_policies WHERE bank_code = $1::text AND version >= $2::int
	)`

// PolicyRepo implements port.PolicyStore and port.PolicyPublisher. Every
// published version is kept.
type PolicyRepo struct {
	pool *pgxpool.Pool
}

// NewPolicyRepo creates a new PostgreSQL-backed policy repository.
func NewPolicyRepo(pool *pgxpool.Pool) *PolicyRepo {
	return &PolicyRepo{pool: pool}
}

// CurrentPolicy returns the highest stored version for bankCode.
func (r *PolicyRepo) CurrentPolicy(ctx context.Context, bankCode string) (model.PartnerBankPolicy, error) {
	var doc []byte
	if err := r.pool.QueryRow(ctx, currentPolicySQL, bankCode).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PartnerBankPolicy{}, &model.PolicyNotFoundError{BankCode: bankCode}
		}
		return model.PartnerBankPolicy{}, fmt.Errorf("current policy: %w", err)
	}

	var p model.PartnerBankPolicy
	if err := json.Unmarshal(doc, &p); err != nil {
		return model.PartnerBankPolicy{}, fmt.Errorf("decode policy %s: %w", bankCode, err)
	}
	if err := p.Validate(); err != nil {
		return model.PartnerBankPolicy{}, err
	}
	return p, nil
}

// Publish stores p as a new version. The version must exceed the latest
// stored one.
func (r *PolicyRepo) Publish(ctx context.Context, p model.PartnerBankPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}

	tag, err := r.pool.Exec(ctx, publishPolicySQL, p.BankCode, p.Version, doc)
	if err != nil && !pg.IsUniqueViolation(err) {
		return fmt.Errorf("publish policy: %w", err)
	}
	if err != nil || tag.RowsAffected() == 0 {
		return &model.ConfigurationError{Field: "version", Reason: "must be greater than the current version"}
	}
	return nil
}
