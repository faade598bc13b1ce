package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aman3729/credit-score/pkg/events"
)

const fetchUnpublishedSQL = `
	SELECT id, aggregate_id, aggregate_type, event_type, tenant_id, payload, created_at
	FROM outbox
	WHERE published_at IS NULL
	ORDER BY created_at, id
	LIMIT $1`

const markPublishedSQL = `
	UPDATE outbox SET published_at = now()
	WHERE id = ANY($1::uuid[]) AND published_at IS NULL`

// OutboxRepo implements events.OutboxReader over the outbox table.
type OutboxRepo struct {
	pool *pgxpool.Pool
}

// NewOutboxRepo creates a new PostgreSQL-backed outbox reader.
func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// FetchUnpublished returns the oldest unpublished entries.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	rows, err := r.pool.Query(ctx, fetchUnpublishedSQL, batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	defer rows.Close()

	var out []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.TenantID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	return out, nil
}

// MarkPublished stamps the given entries. Unknown or already published ids
// are ignored.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, markPublishedSQL, ids); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
