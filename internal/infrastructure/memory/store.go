// Package memory holds in-process adapters for the decision engine ports.
// They back the offline CLI and tests and follow the same optimistic
// concurrency rules as the Postgres adapters.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aman3729/credit-score/internal/domain/event"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/pkg/events"
)

// Store implements BorrowerProfileStore, DecisionLedger, DecisionCommitter
// and the outbox reader. Writers for one borrower are serialised by a
// per-borrower mutex; different borrowers never block each other.
type Store struct {
	locks keyedMutex

	mu        sync.RWMutex
	profiles  map[string]model.BorrowerProfile
	decisions map[string][]model.LendingDecision
	outbox    []events.OutboxEntry
	now       func() time.Time
}

// NewStore creates an empty store stamped with the UTC wall clock.
func NewStore() *Store {
	return &Store{
		profiles:  make(map[string]model.BorrowerProfile),
		decisions: make(map[string][]model.LendingDecision),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

// FindByID returns a copy of the borrower's committed profile or
// model.ErrBorrowerNotFound.
func (s *Store) FindByID(_ context.Context, borrowerID string) (model.BorrowerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[borrowerID]
	if !ok {
		return model.BorrowerProfile{}, model.ErrBorrowerNotFound
	}
	return cloneProfile(p), nil
}

// SaveProfile stores p unconditionally as the next version of the
// borrower's profile. It is meant for seeding.
func (s *Store) SaveProfile(_ context.Context, p model.BorrowerProfile) (model.BorrowerProfile, error) {
	if err := p.Validate(); err != nil {
		return model.BorrowerProfile{}, err
	}
	unlock := s.locks.lock(p.BorrowerID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	p.Version = s.profiles[p.BorrowerID].Version + 1
	p.UpdatedAt = s.now()
	s.profiles[p.BorrowerID] = cloneProfile(p)
	return cloneProfile(p), nil
}

// ---------------------------------------------------------------------------
// Ledger
// ---------------------------------------------------------------------------

// Append adds d to the borrower's ledger together with its outbox entries.
// d must sit one past the latest entry and be stamped after it, otherwise
// model.ErrConcurrencyConflict is returned and nothing is stored.
func (s *Store) Append(_ context.Context, d model.LendingDecision, evts ...event.DomainEvent) error {
	entries, err := events.NewOutboxEntries(evts)
	if err != nil {
		return err
	}
	unlock := s.locks.lock(d.BorrowerID())
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSequence(d); err != nil {
		return err
	}
	s.decisions[d.BorrowerID()] = append(s.decisions[d.BorrowerID()], d)
	s.outbox = append(s.outbox, entries...)
	return nil
}

// Latest returns the borrower's current decision or model.ErrDecisionNotFound.
func (s *Store) Latest(_ context.Context, borrowerID string) (model.LendingDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := s.decisions[borrowerID]
	if len(ledger) == 0 {
		return model.LendingDecision{}, model.ErrDecisionNotFound
	}
	return ledger[len(ledger)-1], nil
}

// History returns up to limit decisions with a sequence above afterSequence,
// oldest first.
func (s *Store) History(_ context.Context, borrowerID string, afterSequence, limit int) ([]model.LendingDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := s.decisions[borrowerID]
	start := sort.Search(len(ledger), func(i int) bool { return ledger[i].Sequence() > afterSequence })
	end := min(len(ledger), start+max(limit, 0))
	out := make([]model.LendingDecision, end-start)
	copy(out, ledger[start:end])
	return out, nil
}

// ---------------------------------------------------------------------------
// Committer
// ---------------------------------------------------------------------------

// Commit stores the profile, the decision computed from it and the events
// as one unit. p.Version must match the committed profile; it is bumped on
// success.
func (s *Store) Commit(_ context.Context, p model.BorrowerProfile, d model.LendingDecision, evts ...event.DomainEvent) error {
	if p.BorrowerID != d.BorrowerID() {
		return model.NewValidationError("borrowerId", "profile and decision belong to different borrowers")
	}
	entries, err := events.NewOutboxEntries(evts)
	if err != nil {
		return err
	}
	unlock := s.locks.lock(p.BorrowerID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profiles[p.BorrowerID].Version != p.Version {
		return model.ErrConcurrencyConflict
	}
	if err := s.checkSequence(d); err != nil {
		return err
	}

	p.Version++
	p.UpdatedAt = s.now()
	s.profiles[p.BorrowerID] = cloneProfile(p)
	s.decisions[d.BorrowerID()] = append(s.decisions[d.BorrowerID()], d)
	s.outbox = append(s.outbox, entries...)
	return nil
}

// checkSequence requires d to sit exactly one past the latest entry and to
// be stamped after it. Callers hold s.mu.
func (s *Store) checkSequence(d model.LendingDecision) error {
	ledger := s.decisions[d.BorrowerID()]
	if d.Sequence() != len(ledger)+1 {
		return model.ErrConcurrencyConflict
	}
	if len(ledger) > 0 && d.Timestamp().Before(model.EarliestAfter(ledger[len(ledger)-1].Timestamp())) {
		return model.ErrConcurrencyConflict
	}
	return nil
}

// ---------------------------------------------------------------------------
// Outbox
// ---------------------------------------------------------------------------

// FetchUnpublished returns up to batchSize outbox entries in insertion order.
func (s *Store) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []events.OutboxEntry
	for _, e := range s.outbox {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, e)
		if len(out) == batchSize {
			break
		}
	}
	return out, nil
}

// MarkPublished stamps the given entries. Unknown ids are ignored.
func (s *Store) MarkPublished(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	pending := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		pending[id] = struct{}{}
	}
	for i := range s.outbox {
		if _, ok := pending[s.outbox[i].ID]; ok && s.outbox[i].PublishedAt == nil {
			s.outbox[i].PublishedAt = &now
		}
	}
	return nil
}

func cloneProfile(p model.BorrowerProfile) model.BorrowerProfile {
	if p.LastDelinquencyMonthsAgo != nil {
		v := *p.LastDelinquencyMonthsAgo
		p.LastDelinquencyMonthsAgo = &v
	}
	if p.CollateralValue != nil {
		v := *p.CollateralValue
		p.CollateralValue = &v
	}
	if p.CollateralQuality != nil {
		v := *p.CollateralQuality
		p.CollateralQuality = &v
	}
	return p
}
