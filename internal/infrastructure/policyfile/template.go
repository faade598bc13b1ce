package policyfile

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aman3729/credit-score/internal/domain/model"
)

// Marshal renders a policy as a YAML document that Parse accepts.
func Marshal(p model.PartnerBankPolicy) ([]byte, error) {
	asJSON, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("policyfile: marshal policy: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(asJSON, &tree); err != nil {
		return nil, fmt.Errorf("policyfile: marshal policy: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("policyfile: marshal policy: %w", err)
	}
	return out, nil
}
