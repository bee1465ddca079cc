package reconcile

import (
	"context"
	"maps"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

// UDFCreator creates a sanitized UDF on the target environment and returns
// the identifier the target assigned. Creation is not idempotent: every call
// creates a new function.
type UDFCreator interface {
	CreateUDF(ctx context.Context, udf model.UDF) (string, error)
}

// SchemaReconciler merges a source schema into a target schema by name.
// Classes and fields whose names exist on the target keep the target's
// identifiers; everything else gets a freshly minted identifier or is
// submitted as a new class for the target to key.
type SchemaReconciler struct {
	creator UDFCreator
	minter  *Minter
	udfs    map[string]model.UDF
}

// NewSchemaReconciler returns a reconciler that resolves UDF references
// against sanitizedUDFs, keyed by source-environment UDF id.
func NewSchemaReconciler(creator UDFCreator, minter *Minter, sanitizedUDFs map[string]model.UDF) *SchemaReconciler {
	return &SchemaReconciler{creator: creator, minter: minter, udfs: sanitizedUDFs}
}

// Reconcile builds the schema payload for the target environment. Every
// identifier in the result is either an identifier the target already owns or
// one freshly minted this run. UDF extraction lines are rewritten to the ids
// the target assigns as the functions are re-created.
func (r *SchemaReconciler) Reconcile(ctx context.Context, source, target model.SchemaDocument) (*model.SchemaPayload, error) {
	sourceClasses := nameIndex(source)
	targetClasses := nameIndex(target)

	// Minted ids must never collide with identifiers already on the target.
	for classID, class := range target {
		r.minter.Reserve(classID)
		for fieldID := range class.Fields {
			r.minter.Reserve(fieldID)
		}
	}

	payload := &model.SchemaPayload{
		Classes:    make(map[string]model.ClassPayload),
		NewClasses: []model.ClassPayload{},
	}

	for _, className := range slices.Sorted(maps.Keys(sourceClasses)) {
		sourceClass := source[sourceClasses[className]]
		sourceFields := nameIndex(sourceClass.Fields)

		classPayload := model.ClassPayload{
			Name:        sourceClass.Name,
			Description: sourceClass.Description,
			Fields:      make(map[string]model.FieldDefinition),
			NewFields:   []model.FieldDefinition{},
		}

		targetClassID, exists := targetClasses[className]
		if !exists {
			// Whole class is new: every field is a new_fields entry and the
			// class itself carries no identifier until the target assigns one.
			for _, fieldName := range slices.Sorted(maps.Keys(sourceFields)) {
				field := sourceClass.Fields[sourceFields[fieldName]].Clone()
				if err := r.rewriteUDFLines(ctx, &field); err != nil {
					return nil, err
				}
				field.UUID = r.minter.Mint()
				classPayload.NewFields = append(classPayload.NewFields, field)
			}
			payload.NewClasses = append(payload.NewClasses, classPayload)
			continue
		}

		targetFields := nameIndex(target[targetClassID].Fields)
		for _, fieldName := range slices.Sorted(maps.Keys(sourceFields)) {
			field := sourceClass.Fields[sourceFields[fieldName]].Clone()
			if err := r.rewriteUDFLines(ctx, &field); err != nil {
				return nil, err
			}
			if targetFieldID, ok := targetFields[fieldName]; ok {
				classPayload.Fields[targetFieldID] = field
			} else {
				field.UUID = r.minter.Mint()
				classPayload.NewFields = append(classPayload.NewFields, field)
			}
		}
		payload.Classes[targetClassID] = classPayload
	}

	return payload, nil
}

// rewriteUDFLines re-creates the UDF behind every UDF-kind line on the target
// and points the line at the target-assigned id.
func (r *SchemaReconciler) rewriteUDFLines(ctx context.Context, field *model.FieldDefinition) error {
	for i := range field.Lines {
		line := &field.Lines[i]
		if line.LineType != model.LineTypeUDF {
			continue
		}
		udf, ok := r.udfs[line.FunctionID]
		if !ok {
			return &MissingEntityError{Kind: "udf", Ref: line.FunctionID}
		}
		newID, err := r.creator.CreateUDF(ctx, udf)
		if err != nil {
			return eris.Wrapf(err, "reconcile: create udf for field %q", field.Name)
		}
		line.FunctionID = newID
	}
	return nil
}
