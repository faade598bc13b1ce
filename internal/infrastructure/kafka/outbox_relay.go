package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/aman3729/credit-score/pkg/events"
)

// RelayObserver receives relay outcomes. *observability.Metrics satisfies it.
type RelayObserver interface {
	OutboxRelayed(n int)
	OutboxFailed()
}

// OutboxRelay polls the outbox and hands unpublished entries to the
// publisher. Delivery is at least once: entries are marked only after the
// publisher accepted them, so a crash in between republishes the batch.
type OutboxRelay struct {
	reader    events.OutboxReader
	publisher events.EntryPublisher
	observer  RelayObserver
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

// NewOutboxRelay creates a relay. A nil observer disables relay metrics.
func NewOutboxRelay(
	reader events.OutboxReader,
	publisher events.EntryPublisher,
	observer RelayObserver,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		reader:    reader,
		publisher: publisher,
		observer:  observer,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run relays until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", "interval", r.interval, "batch_size", r.batchSize)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.drain(ctx)
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		}
	}
}

// drain relays full batches back to back so a backlog clears in one tick.
func (r *OutboxRelay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.RelayOnce(ctx)
		if err != nil {
			r.logger.Error("outbox relay failed", "error", err)
			return
		}
		if n < r.batchSize {
			return
		}
	}
}

// RelayOnce publishes at most one batch and returns how many entries were
// relayed.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.reader.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		r.failed()
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := r.publisher.PublishEntries(ctx, entries...); err != nil {
		r.failed()
		return 0, err
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := r.reader.MarkPublished(ctx, ids); err != nil {
		r.failed()
		return 0, err
	}

	if r.observer != nil {
		r.observer.OutboxRelayed(len(entries))
	}
	r.logger.Debug("relayed outbox entries", "count", len(entries))
	return len(entries), nil
}

func (r *OutboxRelay) failed() {
	if r.observer != nil {
		r.observer.OutboxFailed()
	}
}
