package policyfile_test

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/model/modeltest"
	"github.com/aman3729/credit-score/internal/domain/valueobject"
	"github.com/aman3729/credit-score/internal/infrastructure/policyfile"
)

func newParser(t *testing.T) *policyfile.Parser {
	t.Helper()
	p, err := policyfile.NewParser()
	require.NoError(t, err)
	return p
}

// baselineTree returns the baseline policy as a generic YAML tree that tests
// can edit before rendering it back.
func baselineTree(t *testing.T) map[string]any {
	t.Helper()
	doc, err := policyfile.Marshal(modeltest.Policy())
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, yaml.Unmarshal(doc, &tree))
	return tree
}

func render(t *testing.T, tree map[string]any) []byte {
	t.Helper()
	doc, err := yaml.Marshal(tree)
	require.NoError(t, err)
	return doc
}

func TestParser_RoundTripsBaseline(t *testing.T) {
	doc, err := policyfile.Marshal(modeltest.Policy())
	require.NoError(t, err)

	got, err := newParser(t).Parse(doc)
	require.NoError(t, err)

	want := modeltest.Policy()
	assert.Equal(t, want.BankCode, got.BankCode)
	assert.Equal(t, want.Version, got.Version)
	assert.Equal(t, want.ClassificationBands, got.ClassificationBands)
	assert.True(t, want.ScoringWeights.PaymentHistory.Equal(got.ScoringWeights.PaymentHistory))
	assert.ElementsMatch(t, want.LoanTypes(), got.LoanTypes())
	personal, err := got.LoanPolicy(valueobject.LoanTypePersonal)
	require.NoError(t, err)
	assert.True(t, personal.LoanAmountCaps[valueobject.ClassificationExcellent].Equal(modeltest.Dec(50000)))
}

func TestParser_AcceptsHandWrittenNumbers(t *testing.T) {
	tree := baselineTree(t)
	tree["scoringWeights"] = map[string]any{
		"paymentHistory":    0.35,
		"creditUtilization": 0.3,
		"creditAge":         0.15,
		"creditMix":         0.1,
		"inquiries":         0.1,
	}

	got, err := newParser(t).Parse(render(t, tree))
	require.NoError(t, err)
	assert.True(t, got.ScoringWeights.CreditUtilization.Equal(modeltest.Dec(0.3)))
}

func TestParser_AcceptsJSON(t *testing.T) {
	tree := baselineTree(t)
	tree["bankCode"] = "BANK-J"
	doc, err := json.Marshal(tree)
	require.NoError(t, err)

	got, err := newParser(t).Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "BANK-J", got.BankCode)
}

func TestParser_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(tree map[string]any)
		wantField string
	}{
		{
			name:      "missing section",
			mutate:    func(tree map[string]any) { delete(tree, "interestRatePolicy") },
			wantField: "document",
		},
		{
			name:      "unknown top level key",
			mutate:    func(tree map[string]any) { tree["rulesDSL"] = "x > 1" },
			wantField: "document",
		},
		{
			name:      "wrong type",
			mutate:    func(tree map[string]any) { tree["version"] = "one" },
			wantField: "version",
		},
		{
			name: "malformed decimal",
			mutate: func(tree map[string]any) {
				tree["interestRatePolicy"].(map[string]any)["baseRate"] = "8 percent"
			},
			wantField: "interestRatePolicy.baseRate",
		},
		{
			name: "unknown classification",
			mutate: func(tree map[string]any) {
				tree["collateralRules"].(map[string]any)["requiredForBuckets"] = []any{"PLATINUM"}
			},
			wantField: "collateralRules.requiredForBuckets.0",
		},
		{
			name: "empty term options",
			mutate: func(tree map[string]any) {
				lp := tree["lendingPolicy"].(map[string]any)["personal"].(map[string]any)
				lp["termOptions"] = []any{}
			},
			wantField: "lendingPolicy.personal.termOptions",
		},
		{
			name: "schema valid but inconsistent",
			mutate: func(tree map[string]any) {
				tree["scoreBounds"] = map[string]any{"min": 900, "max": 300}
			},
			wantField: "scoreBounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := baselineTree(t)
			tt.mutate(tree)

			_, err := newParser(t).Parse(render(t, tree))
			var ce *model.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantField, ce.Field, ce.Reason)
		})
	}
}

func TestParser_RejectsGarbage(t *testing.T) {
	for _, doc := range []string{"", "::: not yaml", "- just\n- a list\n"} {
		_, err := newParser(t).Parse([]byte(doc))
		assert.True(t, model.IsConfiguration(err), "doc %q", doc)
	}
}

func TestLoadFS(t *testing.T) {
	v1 := baselineTree(t)
	v2 := baselineTree(t)
	v2["version"] = 2
	other := baselineTree(t)
	other["bankCode"] = "BANK-B"

	fsys := fstest.MapFS{
		"bank-a.v1.yaml": {Data: render(t, v1)},
		"bank-a.v2.yml":  {Data: render(t, v2)},
		"bank-b.yaml":    {Data: render(t, other)},
		"README.md":      {Data: []byte("# policies")},
	}

	store, err := policyfile.LoadFS(fsys, newParser(t))
	require.NoError(t, err)
	assert.Len(t, store.All(), 2)

	a, err := store.CurrentPolicy(context.Background(), modeltest.BankCode)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Version)

	_, err = store.CurrentPolicy(context.Background(), "BANK-Z")
	assert.True(t, model.IsPolicyNotFound(err))

	t.Run("one bad file fails the load", func(t *testing.T) {
		broken := baselineTree(t)
		delete(broken, "bankCode")
		fsys["broken.yaml"] = &fstest.MapFile{Data: render(t, broken)}

		_, err := policyfile.LoadFS(fsys, newParser(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.yaml")
		assert.True(t, model.IsConfiguration(err))
	})
}

func TestLoadDir_Testdata(t *testing.T) {
	store, err := policyfile.LoadDir("testdata", newParser(t))
	require.NoError(t, err)

	p, err := store.CurrentPolicy(context.Background(), "BANK-DEMO")
	require.NoError(t, err)
	assert.True(t, p.RecessionMode.Enabled)
	assert.Equal(t, 36, p.RecessionMode.MaxTerm)
}

func TestParser_RiskTierAdjustmentsAreKeyedByTier(t *testing.T) {
	t.Run("known tiers", func(t *testing.T) {
		tree := baselineTree(t)
		rates := tree["interestRatePolicy"].(map[string]any)
		rates["riskTierAdjustments"] = map[string]any{"MODERATE": 0.5, "HIGH": 1.25}

		got, err := newParser(t).Parse(render(t, tree))
		require.NoError(t, err)
		adj := got.InterestRatePolicy.RiskTierAdjustments
		require.Len(t, adj, 2)
		assert.True(t, adj[valueobject.RiskTierHigh].Equal(modeltest.Dec(1.25)))
		assert.True(t, adj[valueobject.RiskTierModerate].Equal(modeltest.Dec(0.5)))
	})

	t.Run("unknown tier", func(t *testing.T) {
		tree := baselineTree(t)
		rates := tree["interestRatePolicy"].(map[string]any)
		rates["riskTierAdjustments"] = map[string]any{"EXTREME": 5}

		_, err := newParser(t).Parse(render(t, tree))
		var ce *model.ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Contains(t, ce.Field, "riskTierAdjustments")
	})
}
