package model

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// RuleType enumerates the validation rule kinds the promotion pipeline
// understands. Unknown kinds pass through untouched apart from field
// reference rewriting.
type RuleType string

const (
	RuleTypeFieldConfidence RuleType = "FIELD_CONFIDENCE"
	RuleTypeClassConfidence RuleType = "CLASS_CONFIDENCE"
	RuleTypeUDF             RuleType = "UDF"
	RuleTypePromptUDF       RuleType = "PROMPT_UDF"
)

// ValidationDocument is the validations endpoint response.
type ValidationDocument struct {
	Rules []ValidationRule `json:"rules"`
}

// ValidationRule is a named rule constraining extracted field or class
// values. AffectedFields and InputFields hold environment-local field
// identifiers; Params may embed further identifiers depending on Type.
type ValidationRule struct {
	ID             string     `json:"id,omitempty"`
	Name           string     `json:"name"`
	Type           RuleType   `json:"type"`
	AlertLevel     string     `json:"alert_level,omitempty"`
	Scope          string     `json:"scope,omitempty"`
	Description    string     `json:"description,omitempty"`
	AffectedFields []string   `json:"affected_fields,omitempty"`
	InputFields    []string   `json:"input_fields,omitempty"`
	Params         RuleParams `json:"params,omitempty"`
}

// RuleParams carries a rule's type-dependent parameters as raw JSON keyed by
// name. The promotion pipeline rewrites the identifier keys it understands
// (affected_classes for class-confidence rules, udf_id for UDF-backed rules)
// and round-trips every other key verbatim.
type RuleParams map[string]json.RawMessage

const (
	paramAffectedClasses = "affected_classes"
	paramUDFID           = "udf_id"
)

// Clone returns an independent copy safe to rewrite. Cloning nil yields an
// empty, writable map.
func (p RuleParams) Clone() RuleParams {
	out := make(RuleParams, len(p))
	for k, v := range p {
		out[k] = bytes.Clone(v)
	}
	return out
}

// AffectedClasses decodes the class identifier list of a class-confidence
// rule. An absent key yields nil.
func (p RuleParams) AffectedClasses() ([]string, error) {
	raw, ok := p[paramAffectedClasses]
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, eris.Wrap(err, "model: decode affected_classes")
	}
	return ids, nil
}

// SetAffectedClasses replaces the class identifier list.
func (p RuleParams) SetAffectedClasses(ids []string) {
	data, _ := json.Marshal(ids)
	p[paramAffectedClasses] = data
}

// UDFID decodes the UDF reference of a UDF-backed or prompt-UDF rule. An
// absent key yields "".
func (p RuleParams) UDFID() (string, error) {
	raw, ok := p[paramUDFID]
	if !ok {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", eris.Wrap(err, "model: decode udf_id")
	}
	return id, nil
}

// SetUDFID replaces the UDF reference.
func (p RuleParams) SetUDFID(id string) {
	data, _ := json.Marshal(id)
	p[paramUDFID] = data
}

// ValidationPayload is a reconciled rule ready to post to the target
// environment. All identifier references are already rewritten to target ids.
type ValidationPayload struct {
	ProjectID      string     `json:"projectId"`
	Name           string     `json:"name"`
	Type           RuleType   `json:"type"`
	AlertLevel     string     `json:"alert_level,omitempty"`
	Scope          string     `json:"scope,omitempty"`
	Description    string     `json:"description"`
	AffectedFields []string   `json:"affected_fields"`
	InputFields    []string   `json:"input_fields"`
	Params         RuleParams `json:"params"`
}
