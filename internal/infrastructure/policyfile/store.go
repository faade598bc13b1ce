package policyfile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aman3729/credit-score/internal/domain/model"
)

// Store serves policies parsed from a directory of documents, one file per
// bank. When a bank has several files the highest version wins.
type Store struct {
	policies map[string]model.PartnerBankPolicy
}

// LoadDir parses every .yaml, .yml and .json file in dir. Any invalid
// document fails the whole load, wrapped with its file name.
func LoadDir(dir string, parser *Parser) (*Store, error) {
	return LoadFS(os.DirFS(dir), parser)
}

func LoadFS(fsys fs.FS, parser *Parser) (*Store, error) {
	s := &Store{policies: make(map[string]model.PartnerBankPolicy)}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("policyfile: read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !isPolicyFile(e.Name()) {
			continue
		}
		doc, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("policyfile: read %s: %w", e.Name(), err)
		}
		policy, err := parser.Parse(doc)
		if err != nil {
			return nil, fmt.Errorf("policyfile: %s: %w", e.Name(), err)
		}
		if current, ok := s.policies[policy.BankCode]; ok && current.Version >= policy.Version {
			continue
		}
		s.policies[policy.BankCode] = policy
	}
	return s, nil
}

func (s *Store) CurrentPolicy(_ context.Context, bankCode string) (model.PartnerBankPolicy, error) {
	p, ok := s.policies[bankCode]
	if !ok {
		return model.PartnerBankPolicy{}, &model.PolicyNotFoundError{BankCode: bankCode}
	}
	return p, nil
}

// All returns the loaded policies, for seeding another store.
func (s *Store) All() []model.PartnerBankPolicy {
	out := make([]model.PartnerBankPolicy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	return out
}

func isPolicyFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
