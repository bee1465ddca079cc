package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

// fakeTarget records the calls the reconcilers make against the target
// environment and hands out sequential ids.
type fakeTarget struct {
	createdUDFs []model.UDF
	deleted     []string
	examples    []string
	createErr   error
}

func (f *fakeTarget) CreateUDF(_ context.Context, udf model.UDF) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdUDFs = append(f.createdUDFs, udf)
	return fmt.Sprintf("tgt-udf-%d", len(f.createdUDFs)), nil
}

func (f *fakeTarget) DeleteValidation(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTarget) TriggerExamples(_ context.Context, id string) error {
	f.examples = append(f.examples, id)
	return nil
}

func textField(name string) model.FieldDefinition {
	return model.FieldDefinition{
		Name:  name,
		Type:  "text",
		Lines: []model.ExtractionLine{{LineType: model.LineTypeText, Content: name}},
	}
}

func TestSchemaReconciler_MatchedEntitiesKeepTargetIDs(t *testing.T) {
	source := model.SchemaDocument{
		"src-class-1": {
			Name: "Invoice",
			Fields: model.FieldMap{
				"src-field-a": textField("amount"),
				"src-field-d": textField("date"),
			},
		},
	}
	target := model.SchemaDocument{
		"tgt-class-9": {
			Name: "Invoice",
			Fields: model.FieldMap{
				"tgt-field-a": textField("amount"),
			},
		},
	}

	rec := NewSchemaReconciler(&fakeTarget{}, NewMinter(), nil)
	payload, err := rec.Reconcile(context.Background(), source, target)
	require.NoError(t, err)

	require.Contains(t, payload.Classes, "tgt-class-9")
	class := payload.Classes["tgt-class-9"]

	// The matched field lands under the target's id, not the source's.
	require.Contains(t, class.Fields, "tgt-field-a")
	assert.Equal(t, "amount", class.Fields["tgt-field-a"].Name)
	assert.Empty(t, class.Fields["tgt-field-a"].UUID)

	// The unmatched field gets a minted id.
	require.Len(t, class.NewFields, 1)
	assert.Equal(t, "date", class.NewFields[0].Name)
	assert.Len(t, class.NewFields[0].UUID, 21)

	assert.Empty(t, payload.NewClasses)
}

func TestSchemaReconciler_UnmatchedClassIsNew(t *testing.T) {
	source := model.SchemaDocument{
		"src-class-1": {
			Name:        "Receipt",
			Description: "Retail receipts",
			Fields: model.FieldMap{
				"src-field-t": textField("total"),
			},
		},
	}
	target := model.SchemaDocument{
		"tgt-class-1": {Name: "Invoice"},
	}

	rec := NewSchemaReconciler(&fakeTarget{}, NewMinter(), nil)
	payload, err := rec.Reconcile(context.Background(), source, target)
	require.NoError(t, err)

	assert.Empty(t, payload.Classes)
	require.Len(t, payload.NewClasses, 1)
	nc := payload.NewClasses[0]
	assert.Equal(t, "Receipt", nc.Name)
	assert.Equal(t, "Retail receipts", nc.Description)
	require.Len(t, nc.NewFields, 1)
	assert.Equal(t, "total", nc.NewFields[0].Name)
	assert.Len(t, nc.NewFields[0].UUID, 21)
}

func TestSchemaReconciler_RewritesUDFLines(t *testing.T) {
	udfField := model.FieldDefinition{
		Name: "tax",
		Lines: []model.ExtractionLine{
			{LineType: model.LineTypePrompt, Content: "extract the tax"},
			{LineType: model.LineTypeUDF, FunctionID: "src-udf-7"},
		},
	}
	source := model.SchemaDocument{
		"src-class-1": {Name: "Invoice", Fields: model.FieldMap{"src-field-t": udfField}},
	}
	target := model.SchemaDocument{
		"tgt-class-1": {Name: "Invoice", Fields: model.FieldMap{"tgt-field-t": textField("tax")}},
	}
	udfs := map[string]model.UDF{
		"src-udf-7": {Name: "compute_tax", Code: "def compute_tax(v): return v", ReturnType: "string"},
	}

	ft := &fakeTarget{}
	rec := NewSchemaReconciler(ft, NewMinter(), udfs)
	payload, err := rec.Reconcile(context.Background(), source, target)
	require.NoError(t, err)

	field := payload.Classes["tgt-class-1"].Fields["tgt-field-t"]
	require.Len(t, field.Lines, 2)
	assert.Equal(t, "extract the tax", field.Lines[0].Content)
	assert.Equal(t, "tgt-udf-1", field.Lines[1].FunctionID)

	require.Len(t, ft.createdUDFs, 1)
	assert.Equal(t, "compute_tax", ft.createdUDFs[0].Name)

	// The fetched source document is never mutated.
	assert.Equal(t, "src-udf-7", source["src-class-1"].Fields["src-field-t"].Lines[1].FunctionID)
}

func TestSchemaReconciler_MissingUDFFails(t *testing.T) {
	source := model.SchemaDocument{
		"src-class-1": {
			Name: "Invoice",
			Fields: model.FieldMap{
				"src-field-t": {
					Name:  "tax",
					Lines: []model.ExtractionLine{{LineType: model.LineTypeUDF, FunctionID: "gone"}},
				},
			},
		},
	}

	rec := NewSchemaReconciler(&fakeTarget{}, NewMinter(), map[string]model.UDF{})
	_, err := rec.Reconcile(context.Background(), source, model.SchemaDocument{})
	require.Error(t, err)

	var missing *MissingEntityError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "udf", missing.Kind)
	assert.Equal(t, "gone", missing.Ref)
}

func TestSchemaReconciler_EmptyTarget(t *testing.T) {
	source := model.SchemaDocument{
		"src-class-1": {Name: "Invoice", Fields: model.FieldMap{"src-field-a": textField("amount")}},
		"src-class-2": {Name: "Receipt", Fields: model.FieldMap{"src-field-t": textField("total")}},
	}

	rec := NewSchemaReconciler(&fakeTarget{}, NewMinter(), nil)
	payload, err := rec.Reconcile(context.Background(), source, model.SchemaDocument{})
	require.NoError(t, err)

	assert.Empty(t, payload.Classes)
	require.Len(t, payload.NewClasses, 2)
	// Deterministic ordering by class name.
	assert.Equal(t, "Invoice", payload.NewClasses[0].Name)
	assert.Equal(t, "Receipt", payload.NewClasses[1].Name)
}

func TestNameIndex_SkipsMetaKeys(t *testing.T) {
	container := map[string]model.ClassDefinition{
		"class-1":        {Name: "Invoice"},
		"last_edited_at": {},
	}

	idx := nameIndex(container)
	assert.Equal(t, map[string]string{"Invoice": "class-1"}, idx)
}
