package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// schemaMetaKeys are non-entity keys the schema endpoint stores alongside
// class and field definitions in the same JSON object.
var schemaMetaKeys = map[string]bool{
	"last_edited_at":       true,
	"last_edited_class_at": true,
}

// IsSchemaMetaKey reports whether a container key is editing metadata rather
// than an entity identifier.
func IsSchemaMetaKey(key string) bool {
	return schemaMetaKeys[key]
}

// SchemaDocument maps environment-local class identifiers to class
// definitions, as returned by the schema endpoint.
type SchemaDocument map[string]ClassDefinition

// UnmarshalJSON decodes a schema container, dropping the editing-timestamp
// keys the API mixes in with entity entries.
func (d *SchemaDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: decode schema document")
	}
	out := make(SchemaDocument, len(raw))
	for id, msg := range raw {
		if IsSchemaMetaKey(id) {
			continue
		}
		var class ClassDefinition
		if err := json.Unmarshal(msg, &class); err != nil {
			return eris.Wrapf(err, "model: decode class %s", id)
		}
		out[id] = class
	}
	*d = out
	return nil
}

// ClassDefinition is a named extraction class. The identifier is the key
// under which it lives in the SchemaDocument; it is environment-local and
// never compared across environments. Name is the identity key.
type ClassDefinition struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Fields      FieldMap `json:"fields,omitempty"`
}

// EntityName implements the Named lookup used for cross-environment matching.
func (c ClassDefinition) EntityName() string { return c.Name }

// FieldMap maps environment-local field identifiers to field definitions.
// Like SchemaDocument, the raw container can carry editing-timestamp keys.
type FieldMap map[string]FieldDefinition

// UnmarshalJSON decodes a field container, dropping editing-timestamp keys.
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: decode field map")
	}
	out := make(FieldMap, len(raw))
	for id, msg := range raw {
		if IsSchemaMetaKey(id) {
			continue
		}
		var field FieldDefinition
		if err := json.Unmarshal(msg, &field); err != nil {
			return eris.Wrapf(err, "model: decode field %s", id)
		}
		out[id] = field
	}
	*m = out
	return nil
}

// FieldDefinition is a named field inside a class. Lines are its ordered
// extraction rules; a line of kind UDF references a user-defined function.
type FieldDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Type        string           `json:"type,omitempty"`
	Lines       []ExtractionLine `json:"lines"`

	// UUID carries a freshly minted identifier when the field is new to the
	// target environment. Empty on fetched definitions.
	UUID string `json:"uuid,omitempty"`
}

// EntityName implements the Named lookup used for cross-environment matching.
func (f FieldDefinition) EntityName() string { return f.Name }

// Clone returns a deep copy of the field definition.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	if f.Lines != nil {
		out.Lines = make([]ExtractionLine, len(f.Lines))
		copy(out.Lines, f.Lines)
	}
	return out
}

// Extraction line kinds.
const (
	LineTypeText   = "TEXT"
	LineTypePrompt = "PROMPT"
	LineTypeUDF    = "UDF"
)

// ExtractionLine is one typed extraction rule of a field. FunctionID is set
// only for lines of kind UDF and references an environment-local UDF id.
type ExtractionLine struct {
	LineType   string `json:"line_type"`
	Content    string `json:"content,omitempty"`
	FunctionID string `json:"function_id,omitempty"`
}

// SchemaPayload is the reconciled schema posted to the target environment:
// per-target-class merges keyed by existing target class id, plus classes the
// target has never seen.
type SchemaPayload struct {
	Classes    map[string]ClassPayload `json:"classes"`
	NewClasses []ClassPayload          `json:"new_classes"`
}

// ClassPayload carries a class's merged content. Fields is keyed by existing
// target field id; NewFields holds fields the target class lacks, each with a
// minted UUID (or, for a wholly new class, awaiting target-side assignment).
type ClassPayload struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Fields      map[string]FieldDefinition `json:"fields"`
	NewFields   []FieldDefinition          `json:"new_fields"`
}
