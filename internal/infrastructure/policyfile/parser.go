// Package policyfile loads partner bank policies from YAML or JSON
// documents. Documents are checked against a JSON schema before they are
// decoded into model.PartnerBankPolicy and validated.
package policyfile

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/aman3729/credit-score/internal/domain/model"
)

//go:embed policy.schema.json
var policySchema []byte

// Parser implements port.PolicyDocumentParser.
type Parser struct {
	schema *gojsonschema.Schema
}

// NewParser compiles the embedded policy schema.
func NewParser() (*Parser, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(policySchema))
	if err != nil {
		return nil, fmt.Errorf("policyfile: compile schema: %w", err)
	}
	return &Parser{schema: schema}, nil
}

// Parse accepts YAML or JSON (JSON is a YAML subset). Every failure is a
// *model.ConfigurationError naming the offending field.
func (p *Parser) Parse(doc []byte) (model.PartnerBankPolicy, error) {
	var raw any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return model.PartnerBankPolicy{}, &model.ConfigurationError{Field: "document", Reason: err.Error()}
	}
	if raw == nil {
		return model.PartnerBankPolicy{}, &model.ConfigurationError{Field: "document", Reason: "is empty"}
	}

	// Round-trip through JSON so the schema and the typed decoder see the
	// same representation.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return model.PartnerBankPolicy{}, &model.ConfigurationError{Field: "document", Reason: err.Error()}
	}

	result, err := p.schema.Validate(gojsonschema.NewBytesLoader(asJSON))
	if err != nil {
		return model.PartnerBankPolicy{}, &model.ConfigurationError{Field: "document", Reason: err.Error()}
	}
	if !result.Valid() {
		return model.PartnerBankPolicy{}, schemaError(result.Errors())
	}

	var policy model.PartnerBankPolicy
	if err := json.Unmarshal(asJSON, &policy); err != nil {
		return model.PartnerBankPolicy{}, decodeError(err)
	}
	if err := policy.Validate(); err != nil {
		return model.PartnerBankPolicy{}, err
	}
	return policy, nil
}

// schemaError reports the first violation and counts the rest.
func schemaError(errs []gojsonschema.ResultError) *model.ConfigurationError {
	first := errs[0]
	field := first.Field()
	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		field = "document"
	}
	reason := first.Description()
	if len(errs) > 1 {
		reason = fmt.Sprintf("%s (and %d more)", reason, len(errs)-1)
	}
	return &model.ConfigurationError{Field: field, Reason: reason}
}

func decodeError(err error) *model.ConfigurationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &model.ConfigurationError{Field: typeErr.Field, Reason: fmt.Sprintf("cannot hold %s", typeErr.Value)}
	}
	// decimal reports malformed numbers without a field name.
	return &model.ConfigurationError{Field: "document", Reason: strings.TrimPrefix(err.Error(), "json: ")}
}
