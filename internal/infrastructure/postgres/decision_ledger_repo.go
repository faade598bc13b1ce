package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aman3729/credit-score/internal/domain/event"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/pkg/events"
	pg "github.com/aman3729/credit-score/pkg/postgres"
)

// insertDecisionSQL only inserts when $2 is exactly one past the borrower's
// latest sequence and $12 is later than every stored decided_at. A
// concurrent writer that got there first trips the primary key instead.
const insertDecisionSQL = `
	INSERT INTO lending_decisions (
		borrower_id, sequence, id, bank_code, policy_version, loan_type,
		decision, score, is_manual, supersedes, record, decided_at
	)
	SELECT $1::text, $2::int, $3::uuid, $4::text, $5::int, $6::text,
		$7::text, $8::int, $9::boolean, $10::uuid, $11::jsonb, $12::timestamptz
	WHERE COALESCE(
		(SELECT max(sequence) FROM lending_decisions WHERE borrower_id = $1::text), 0
	) = $2::int - 1
	AND NOT EXISTS (
		SELECT 1 FROM lending_decisions
		WHERE borrower_id = $1::text AND decided_at >= $12::timestamptz
	)`

const latestDecisionSQL = `
	SELECT record FROM lending_decisions
	WHERE borrower_id = $1
	ORDER BY sequence DESC
	LIMIT 1`

const historySQL = `
	SELECT record FROM lending_decisions
	WHERE borrower_id = $1 AND sequence > $2
	ORDER BY sequence
	LIMIT $3`

const insertOutboxSQL = `
	INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, tenant_id, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// DecisionLedgerRepo implements port.DecisionLedger and
// port.DecisionCommitter. Rows are only ever inserted.
type DecisionLedgerRepo struct {
	pool *pgxpool.Pool
}

// NewDecisionLedgerRepo creates a new PostgreSQL-backed decision ledger.
func NewDecisionLedgerRepo(pool *pgxpool.Pool) *DecisionLedgerRepo {
	return &DecisionLedgerRepo{pool: pool}
}

// Append inserts d and its events in one transaction.
func (r *DecisionLedgerRepo) Append(ctx context.Context, d model.LendingDecision, evts ...event.DomainEvent) error {
	entries, err := events.NewOutboxEntries(evts)
	if err != nil {
		return fmt.Errorf("append decision: %w", err)
	}
	return pg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertDecision(ctx, tx, d); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, entries)
	})
}

// Commit stores the profile snapshot, the decision computed from it and
// the resulting events atomically.
func (r *DecisionLedgerRepo) Commit(ctx context.Context, p model.BorrowerProfile, d model.LendingDecision, evts ...event.DomainEvent) error {
	if p.BorrowerID != d.BorrowerID() {
		return model.NewValidationError("borrowerId", "profile and decision belong to different borrowers")
	}
	entries, err := events.NewOutboxEntries(evts)
	if err != nil {
		return fmt.Errorf("commit decision: %w", err)
	}
	return pg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := commitProfile(ctx, tx, p); err != nil {
			return err
		}
		if err := insertDecision(ctx, tx, d); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, entries)
	})
}

// Latest returns the borrower's current decision or model.ErrDecisionNotFound.
func (r *DecisionLedgerRepo) Latest(ctx context.Context, borrowerID string) (model.LendingDecision, error) {
	d, err := scanDecision(r.pool.QueryRow(ctx, latestDecisionSQL, borrowerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LendingDecision{}, model.ErrDecisionNotFound
		}
		return model.LendingDecision{}, fmt.Errorf("latest decision: %w", err)
	}
	return d, nil
}

// History returns up to limit decisions with a sequence above afterSequence,
// oldest first.
func (r *DecisionLedgerRepo) History(ctx context.Context, borrowerID string, afterSequence, limit int) ([]model.LendingDecision, error) {
	rows, err := r.pool.Query(ctx, historySQL, borrowerID, afterSequence, max(limit, 0))
	if err != nil {
		return nil, fmt.Errorf("decision history: %w", err)
	}
	defer rows.Close()

	out := make([]model.LendingDecision, 0, max(limit, 0))
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("decision history: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("decision history: %w", err)
	}
	return out, nil
}

func insertDecision(ctx context.Context, q pg.Querier, d model.LendingDecision) error {
	record, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	var supersedes *string
	if s := d.Supersedes(); s != "" {
		supersedes = &s
	}
	tag, err := q.Exec(ctx, insertDecisionSQL,
		d.BorrowerID(), d.Sequence(), d.ID(), d.BankCode(), d.PolicyVersion(), d.LoanType().String(),
		d.Decision().String(), d.Score(), d.IsManual(), supersedes, record, d.Timestamp().Truncate(time.Microsecond),
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return model.ErrConcurrencyConflict
		}
		return fmt.Errorf("insert decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrConcurrencyConflict
	}
	return nil
}

func insertOutbox(ctx context.Context, q pg.Querier, entries []events.OutboxEntry) error {
	for _, e := range entries {
		_, err := q.Exec(ctx, insertOutboxSQL,
			e.ID, e.AggregateID, e.AggregateType, e.EventType, e.TenantID, e.Payload, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert outbox entry %s: %w", e.EventType, err)
		}
	}
	return nil
}

func scanDecision(row scannable) (model.LendingDecision, error) {
	var record []byte
	if err := row.Scan(&record); err != nil {
		return model.LendingDecision{}, err
	}
	var d model.LendingDecision
	if err := json.Unmarshal(record, &d); err != nil {
		return model.LendingDecision{}, fmt.Errorf("decode decision record: %w", err)
	}
	return d, nil
}
