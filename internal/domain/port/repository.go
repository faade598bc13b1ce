package port

import (
	"context"

	"github.com/aman3729/credit-score/internal/domain/event"
	"github.com/aman3729/credit-score/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Policy ports
// ---------------------------------------------------------------------------

// PolicyStore loads the current policy of a partner bank. Implementations
// return only policies that passed Validate and report a missing bank with
// *model.PolicyNotFoundError.
type PolicyStore interface {
	CurrentPolicy(ctx context.Context, bankCode string) (model.PartnerBankPolicy, error)
}

// PolicyPublisher stores a new immutable policy version.
type PolicyPublisher interface {
	Publish(ctx context.Context, policy model.PartnerBankPolicy) error
}

// ---------------------------------------------------------------------------
// Borrower ports
// ---------------------------------------------------------------------------

// BorrowerProfileStore reads committed borrower profiles. Version on the
// returned profile is the token to pass back when committing.
type BorrowerProfileStore interface {
	FindByID(ctx context.Context, borrowerID string) (model.BorrowerProfile, error)
}

// DecisionLedger is the append-only decision history.
//
// Append stores decision at decision.Sequence(), which must be exactly one
// past the borrower's latest entry; otherwise model.ErrConcurrencyConflict is
// returned and nothing is written. Events are stored atomically with the
// decision for later relay.
type DecisionLedger interface {
	Append(ctx context.Context, decision model.LendingDecision, evts ...event.DomainEvent) error
	Latest(ctx context.Context, borrowerID string) (model.LendingDecision, error)
	History(ctx context.Context, borrowerID string, afterSequence, limit int) ([]model.LendingDecision, error)
}

// DecisionCommitter atomically stores a new profile snapshot together with
// the decision computed from it. profile.Version is the version that was
// read; a mismatch yields model.ErrConcurrencyConflict. A zero version
// creates the profile.
type DecisionCommitter interface {
	Commit(ctx context.Context, profile model.BorrowerProfile, decision model.LendingDecision, evts ...event.DomainEvent) error
}

// PolicyDocumentParser turns a raw policy document into a validated policy.
// Schema violations and failed Validate checks are both reported as
// *model.ConfigurationError.
type PolicyDocumentParser interface {
	Parse(doc []byte) (model.PartnerBankPolicy, error)
}
