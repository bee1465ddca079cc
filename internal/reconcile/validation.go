package reconcile

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

// Target is the capability surface validation reconciliation needs on the
// target environment. All operations are project-scoped by the implementer.
type Target interface {
	UDFCreator
	DeleteValidation(ctx context.Context, id string) error
	TriggerExamples(ctx context.Context, id string) error
}

// ValidationReconciler merges source validation rules into a target project's
// rules by name. A name collision deletes the target rule first; the source
// rule's payload supersedes it unconditionally.
type ValidationReconciler struct {
	target    Target
	projectID string
	udfs      map[string]model.UDF
}

// NewValidationReconciler returns a reconciler posting into projectID on the
// target. sanitizedUDFs is keyed by source-environment UDF id.
func NewValidationReconciler(target Target, projectID string, sanitizedUDFs map[string]model.UDF) *ValidationReconciler {
	return &ValidationReconciler{target: target, projectID: projectID, udfs: sanitizedUDFs}
}

// Reconcile returns the ordered payloads to persist on the target, one per
// source rule. Field and class references are rewritten element-wise through
// mapping; a reference with no mapping entry aborts the whole reconciliation.
// UDF-backed rules re-create their UDF on the target and trigger example
// generation before the payload is returned. Persisting the payloads, and the
// code-generation step prompt-UDF rules need after persistence, belong to the
// caller.
func (r *ValidationReconciler) Reconcile(ctx context.Context, targetDoc, sourceDoc *model.ValidationDocument, mapping map[string]string) ([]model.ValidationPayload, error) {
	existing := make(map[string]string, len(targetDoc.Rules))
	for _, rule := range targetDoc.Rules {
		existing[rule.Name] = rule.ID
	}

	payloads := make([]model.ValidationPayload, 0, len(sourceDoc.Rules))
	for _, rule := range sourceDoc.Rules {
		if id, ok := existing[rule.Name]; ok {
			if err := r.target.DeleteValidation(ctx, id); err != nil {
				return nil, eris.Wrapf(err, "reconcile: delete superseded rule %q", rule.Name)
			}
		}

		affected, err := rewriteRefs(rule.AffectedFields, mapping, rule.Name)
		if err != nil {
			return nil, err
		}
		inputs, err := rewriteRefs(rule.InputFields, mapping, rule.Name)
		if err != nil {
			return nil, err
		}

		payload := model.ValidationPayload{
			ProjectID:      r.projectID,
			Name:           rule.Name,
			Type:           rule.Type,
			AlertLevel:     rule.AlertLevel,
			Scope:          rule.Scope,
			Description:    rule.Description,
			AffectedFields: affected,
			InputFields:    inputs,
			Params:         rule.Params.Clone(),
		}

		switch rule.Type {
		case model.RuleTypeClassConfidence:
			srcClasses, err := rule.Params.AffectedClasses()
			if err != nil {
				return nil, eris.Wrapf(err, "reconcile: rule %q params", rule.Name)
			}
			// Classes and fields share one mapping namespace.
			classes, err := rewriteRefs(srcClasses, mapping, rule.Name)
			if err != nil {
				return nil, err
			}
			payload.Params.SetAffectedClasses(classes)

		case model.RuleTypeUDF, model.RuleTypePromptUDF:
			udfID, err := rule.Params.UDFID()
			if err != nil {
				return nil, eris.Wrapf(err, "reconcile: rule %q params", rule.Name)
			}
			udf, ok := r.udfs[udfID]
			if !ok {
				return nil, &MissingEntityError{Kind: "udf", Ref: udfID}
			}
			newID, err := r.target.CreateUDF(ctx, udf)
			if err != nil {
				return nil, eris.Wrapf(err, "reconcile: create udf for rule %q", rule.Name)
			}
			if err := r.target.TriggerExamples(ctx, newID); err != nil {
				return nil, eris.Wrapf(err, "reconcile: trigger examples for rule %q", rule.Name)
			}
			payload.Params.SetUDFID(newID)
		}

		payloads = append(payloads, payload)
	}

	return payloads, nil
}

// rewriteRefs maps every identifier through mapping. An absent entry is a
// hard failure, never a silent drop.
func rewriteRefs(ids []string, mapping map[string]string, rule string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		mapped, ok := mapping[id]
		if !ok {
			return nil, &UnmappedReferenceError{Rule: rule, ID: id}
		}
		out = append(out, mapped)
	}
	return out, nil
}
