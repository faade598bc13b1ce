package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aman3729/credit-score/internal/domain/model"
)

// PolicyStore keeps every published version of each bank's policy.
type PolicyStore struct {
	mu       sync.RWMutex
	versions map[string][]model.PartnerBankPolicy
}

// NewPolicyStore publishes the given policies in order.
func NewPolicyStore(policies ...model.PartnerBankPolicy) (*PolicyStore, error) {
	s := &PolicyStore{versions: make(map[string][]model.PartnerBankPolicy)}
	for _, p := range policies {
		if err := s.Publish(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CurrentPolicy returns the highest published version for bankCode or a
// *model.PolicyNotFoundError.
func (s *PolicyStore) CurrentPolicy(_ context.Context, bankCode string) (model.PartnerBankPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.versions[bankCode]
	if len(versions) == 0 {
		return model.PartnerBankPolicy{}, &model.PolicyNotFoundError{BankCode: bankCode}
	}
	return versions[len(versions)-1], nil
}

// Publish validates p and stores it. Versions must strictly increase.
func (s *PolicyStore) Publish(_ context.Context, p model.PartnerBankPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.versions[p.BankCode]
	if n := len(versions); n > 0 && versions[n-1].Version >= p.Version {
		return &model.ConfigurationError{
			Field:  "version",
			Reason: fmt.Sprintf("must be greater than the current version %d", versions[n-1].Version),
		}
	}
	s.versions[p.BankCode] = append(versions, p)
	return nil
}
