package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aman3729/credit-score/internal/domain/event"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/model/modeltest"
	"github.com/aman3729/credit-score/internal/domain/service"
)

// --- Mock implementations ---

type mockPolicyStore struct {
	currentPolicyFunc func(ctx context.Context, bankCode string) (model.PartnerBankPolicy, error)
}

func (m *mockPolicyStore) CurrentPolicy(ctx context.Context, bankCode string) (model.PartnerBankPolicy, error) {
	if m.currentPolicyFunc != nil {
		return m.currentPolicyFunc(ctx, bankCode)
	}
	if bankCode != modeltest.BankCode {
		return model.PartnerBankPolicy{}, &model.PolicyNotFoundError{BankCode: bankCode}
	}
	return modeltest.Policy(), nil
}

type mockProfileStore struct {
	findByIDFunc func(ctx context.Context, borrowerID string) (model.BorrowerProfile, error)
	calls        int
}

func (m *mockProfileStore) FindByID(ctx context.Context, borrowerID string) (model.BorrowerProfile, error) {
	m.calls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, borrowerID)
	}
	return model.BorrowerProfile{}, model.ErrBorrowerNotFound
}

// mockLedger keeps appended decisions in memory unless a func overrides it.
type mockLedger struct {
	mu          sync.Mutex
	appendFunc  func(ctx context.Context, d model.LendingDecision, evts ...event.DomainEvent) error
	latestFunc  func(ctx context.Context, borrowerID string) (model.LendingDecision, error)
	historyFunc func(ctx context.Context, borrowerID string, afterSequence, limit int) ([]model.LendingDecision, error)

	appended []model.LendingDecision
	events   []event.DomainEvent
}

func (m *mockLedger) Append(ctx context.Context, d model.LendingDecision, evts ...event.DomainEvent) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, d, evts...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended = append(m.appended, d)
	m.events = append(m.events, evts...)
	return nil
}

func (m *mockLedger) Latest(ctx context.Context, borrowerID string) (model.LendingDecision, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, borrowerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.appended) - 1; i >= 0; i-- {
		if m.appended[i].BorrowerID() == borrowerID {
			return m.appended[i], nil
		}
	}
	return model.LendingDecision{}, model.ErrDecisionNotFound
}

func (m *mockLedger) History(ctx context.Context, borrowerID string, afterSequence, limit int) ([]model.LendingDecision, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, borrowerID, afterSequence, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LendingDecision
	for _, d := range m.appended {
		if d.BorrowerID() == borrowerID && d.Sequence() > afterSequence && len(out) < limit {
			out = append(out, d)
		}
	}
	return out, nil
}

type commitCall struct {
	profile  model.BorrowerProfile
	decision model.LendingDecision
	events   []event.DomainEvent
}

type mockCommitter struct {
	commitFunc func(ctx context.Context, p model.BorrowerProfile, d model.LendingDecision, evts ...event.DomainEvent) error
	commits    []commitCall
}

func (m *mockCommitter) Commit(ctx context.Context, p model.BorrowerProfile, d model.LendingDecision, evts ...event.DomainEvent) error {
	if m.commitFunc != nil {
		if err := m.commitFunc(ctx, p, d, evts...); err != nil {
			return err
		}
	}
	m.commits = append(m.commits, commitCall{profile: p, decision: d, events: evts})
	return nil
}

type mockPolicyParser struct {
	parseFunc func(doc []byte) (model.PartnerBankPolicy, error)
}

func (m *mockPolicyParser) Parse(doc []byte) (model.PartnerBankPolicy, error) {
	if m.parseFunc != nil {
		return m.parseFunc(doc)
	}
	return modeltest.Policy(), nil
}

type mockPolicyPublisher struct {
	published []model.PartnerBankPolicy
}

func (m *mockPolicyPublisher) Publish(_ context.Context, p model.PartnerBankPolicy) error {
	m.published = append(m.published, p)
	return nil
}

type recordingObserver struct {
	decisions []string
	conflicts int
	durations map[string]int
}

func (o *recordingObserver) DecisionRecorded(decision, loanType string, manual bool) {
	o.decisions = append(o.decisions, decision+"/"+loanType)
}

func (o *recordingObserver) ConcurrencyConflict() { o.conflicts++ }

func (o *recordingObserver) ObserveDuration(operation string, _ time.Duration) {
	if o.durations == nil {
		o.durations = map[string]int{}
	}
	o.durations[operation]++
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPipeline() *service.DecisionPipeline {
	return service.NewDecisionPipeline(nil)
}

func lender() model.Actor {
	return model.Actor{
		ID: "lender-1",
		Capabilities: model.Capabilities{
			CanEvaluate:         true,
			CanOverrideDecision: true,
			CanRecalculate:      true,
			CanViewDecisions:    true,
		},
	}
}

func auditor() model.Actor {
	return model.Actor{
		ID:           "auditor-1",
		Capabilities: model.Capabilities{CanViewDecisions: true, CanViewConfig: true},
	}
}

func storedProfile(p model.BorrowerProfile, version int) *mockProfileStore {
	p.Version = version
	return &mockProfileStore{
		findByIDFunc: func(_ context.Context, id string) (model.BorrowerProfile, error) {
			if id != p.BorrowerID {
				return model.BorrowerProfile{}, model.ErrBorrowerNotFound
			}
			return p, nil
		},
	}
}
