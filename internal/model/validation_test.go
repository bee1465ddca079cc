package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleParams_RoundTripsUnknownKeys(t *testing.T) {
	var rule ValidationRule
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "invoice number format",
		"type": "REGEX",
		"params": {"pattern": "^INV-[0-9]+$", "case_sensitive": true, "udf_id": "udf-1"}
	}`), &rule))

	out, err := json.Marshal(rule.Params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pattern": "^INV-[0-9]+$", "case_sensitive": true, "udf_id": "udf-1"}`, string(out))
}

func TestRuleParams_Accessors(t *testing.T) {
	p := RuleParams{
		"affected_classes": json.RawMessage(`["class-1", "class-2"]`),
		"udf_id":           json.RawMessage(`"udf-7"`),
	}

	classes, err := p.AffectedClasses()
	require.NoError(t, err)
	assert.Equal(t, []string{"class-1", "class-2"}, classes)

	id, err := p.UDFID()
	require.NoError(t, err)
	assert.Equal(t, "udf-7", id)

	absent := RuleParams{}
	classes, err = absent.AffectedClasses()
	require.NoError(t, err)
	assert.Nil(t, classes)
	id, err = absent.UDFID()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestRuleParams_AccessorRejectsMalformedValue(t *testing.T) {
	p := RuleParams{"udf_id": json.RawMessage(`["not", "a", "string"]`)}
	_, err := p.UDFID()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "udf_id")
}

func TestRuleParams_CloneIsIndependent(t *testing.T) {
	src := RuleParams{"udf_id": json.RawMessage(`"udf-1"`), "threshold": json.RawMessage(`0.8`)}

	dst := src.Clone()
	dst.SetUDFID("udf-2")

	id, err := src.UDFID()
	require.NoError(t, err)
	assert.Equal(t, "udf-1", id)
	assert.JSONEq(t, `0.8`, string(dst["threshold"]))

	var none RuleParams
	cloned := none.Clone()
	cloned.SetAffectedClasses([]string{"class-1"})
	assert.JSONEq(t, `["class-1"]`, string(cloned["affected_classes"]))
}
