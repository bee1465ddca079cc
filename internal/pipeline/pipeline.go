// Package pipeline runs a promotion: it replays a fetched source snapshot
// onto a target project, stage by stage, recording each stage in the run
// store. Stages run strictly in order and the first failure stops the run;
// there is no rollback, a failure after the schema was persisted leaves the
// target part-migrated and the run marked partial.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/docsmith-ai/promote-cli/internal/model"
	"github.com/docsmith-ai/promote-cli/internal/plan"
	"github.com/docsmith-ai/promote-cli/internal/reconcile"
	"github.com/docsmith-ai/promote-cli/internal/snapshot"
	"github.com/docsmith-ai/promote-cli/internal/store"
	"github.com/docsmith-ai/promote-cli/pkg/docsmith"
)

// Pipeline orchestrates one promotion from a fetched snapshot.
type Pipeline struct {
	plan   *plan.Plan
	source docsmith.Client
	target docsmith.Client
	store  store.Store
	settle time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a Pipeline. settle is the pause between persisting a
// prompt-backed rule and triggering its code generation, giving the target
// time to index the rule.
func New(pl *plan.Plan, source, target docsmith.Client, st store.Store, settle time.Duration) *Pipeline {
	return &Pipeline{
		plan:   pl,
		source: source,
		target: target,
		store:  st,
		settle: settle,
		sleep:  sleepCtx,
	}
}

// EnsureProject resolves the target project id, creating an empty build
// project on the target when the plan names none. The caller persists the
// returned id back to the plan file.
func (p *Pipeline) EnsureProject(ctx context.Context, snap *snapshot.Snapshot) (string, bool, error) {
	if p.plan.Target.ProjectID != "" {
		return p.plan.Target.ProjectID, false, nil
	}

	src := snap.Settings.ProjectByID(p.plan.Source.ProjectID)
	if src == nil {
		return "", false, eris.Errorf("pipeline: source project %s not present in fetched settings", p.plan.Source.ProjectID)
	}

	resp, err := p.target.CreateProject(ctx, docsmith.CreateProjectRequest{
		Name:         src.Name,
		Description:  src.Description,
		Org:          p.plan.Target.Org,
		Workspace:    p.plan.Target.Workspace,
		CreationBase: "blank",
	})
	if err != nil {
		return "", false, eris.Wrap(err, "pipeline: create target project")
	}
	p.plan.Target.ProjectID = resp.ProjectID
	return resp.ProjectID, true, nil
}

// Run executes the promotion for a fetched snapshot and returns the recorded
// run. The returned error is the stage failure, if any; the run record always
// reflects the final status.
func (p *Pipeline) Run(ctx context.Context, snap *snapshot.Snapshot) (*model.PromotionRun, error) {
	log := zap.L().With(
		zap.String("source_project", p.plan.Source.ProjectID),
		zap.String("target_host", p.plan.Target.Host),
	)
	log.Info("pipeline: starting promotion")

	run, err := p.store.CreateRun(ctx, p.plan.Summary())
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	if statusErr := p.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); statusErr != nil {
		log.Warn("pipeline: failed to update status", zap.Error(statusErr))
	}
	run.Status = model.RunStatusRunning

	// Stage tracking helper. Store failures never fail the run.
	trackStage := func(name string, fn func() (map[string]any, error)) error {
		start := time.Now()
		metadata, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		result := model.StageResult{
			Name:       name,
			Status:     model.StageStatusComplete,
			DurationMS: duration,
			Metadata:   metadata,
		}
		if fnErr != nil {
			result.Status = model.StageStatusFailed
			result.Error = fnErr.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if storeErr := p.store.RecordStage(ctx, run.ID, result); storeErr != nil {
			log.Warn("pipeline: failed to record stage", zap.String("stage", name), zap.Error(storeErr))
		}
		run.Stages = append(run.Stages, result)
		return fnErr
	}

	// A failure after the schema reached the target leaves it part-migrated.
	schemaPersisted := false
	fail := func(stageErr error) (*model.PromotionRun, error) {
		status := model.RunStatusFailed
		if schemaPersisted {
			status = model.RunStatusPartial
		}
		if finishErr := p.store.FinishRun(ctx, run.ID, status, stageErr.Error()); finishErr != nil {
			log.Warn("pipeline: failed to finish run", zap.Error(finishErr))
		}
		run.Status = status
		run.Error = stageErr.Error()
		return run, stageErr
	}

	if err := trackStage(model.StageFetched, func() (map[string]any, error) {
		return map[string]any{
			"classes":     len(snap.Schema),
			"udfs":        len(snap.UDFs),
			"validations": len(snap.Validations.Rules),
		}, nil
	}); err != nil {
		return fail(err)
	}

	targetProjectID := p.plan.Target.ProjectID
	target := &targetOps{client: p.target, projectID: targetProjectID}

	if err := trackStage(model.StageSettingsMigrated, func() (map[string]any, error) {
		return nil, p.migrateSettings(ctx, snap.Settings, targetProjectID)
	}); err != nil {
		return fail(err)
	}

	sanitized := reconcile.SanitizeUDFs(snap.UDFs)

	var payload *model.SchemaPayload
	if err := trackStage(model.StageSchemaReconciled, func() (map[string]any, error) {
		targetSchema, fetchErr := p.target.FetchSchema(ctx, targetProjectID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		rec := reconcile.NewSchemaReconciler(target, reconcile.NewMinter(), sanitized)
		pl, recErr := rec.Reconcile(ctx, snap.Schema, targetSchema)
		if recErr != nil {
			return nil, recErr
		}
		payload = pl
		return map[string]any{
			"matched_classes": len(pl.Classes),
			"new_classes":     len(pl.NewClasses),
		}, nil
	}); err != nil {
		return fail(err)
	}

	var persisted model.SchemaDocument
	if err := trackStage(model.StageSchemaPersisted, func() (map[string]any, error) {
		doc, postErr := p.target.PostSchema(ctx, targetProjectID, payload)
		if postErr != nil {
			return nil, postErr
		}
		persisted = doc
		return nil, nil
	}); err != nil {
		return fail(err)
	}
	schemaPersisted = true

	var mapping map[string]string
	if err := trackStage(model.StageIDsMapped, func() (map[string]any, error) {
		mapping = reconcile.MapFieldIDs(snap.Schema, persisted)
		return map[string]any{"mapped": len(mapping)}, nil
	}); err != nil {
		return fail(err)
	}

	var validations []model.ValidationPayload
	if err := trackStage(model.StageValidationsReconciled, func() (map[string]any, error) {
		targetDoc, fetchErr := p.target.FetchValidations(ctx, targetProjectID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		rec := reconcile.NewValidationReconciler(target, targetProjectID, sanitized)
		pls, recErr := rec.Reconcile(ctx, targetDoc, snap.Validations, mapping)
		if recErr != nil {
			return nil, recErr
		}
		validations = pls
		return map[string]any{"rules": len(pls)}, nil
	}); err != nil {
		return fail(err)
	}

	if err := trackStage(model.StageValidationsPersisted, func() (map[string]any, error) {
		codeGenerated := 0
		for _, vp := range validations {
			resp, postErr := p.target.PostValidation(ctx, targetProjectID, vp)
			if postErr != nil {
				return nil, eris.Wrapf(postErr, "pipeline: post validation %q", vp.Name)
			}
			if vp.Type != model.RuleTypePromptUDF {
				continue
			}
			// The target indexes the rule asynchronously; generating code
			// against an unindexed rule fails.
			if sleepErr := p.sleep(ctx, p.settle); sleepErr != nil {
				return nil, sleepErr
			}
			if genErr := p.target.TriggerCodeGeneration(ctx, targetProjectID, resp.ID); genErr != nil {
				return nil, eris.Wrapf(genErr, "pipeline: trigger code generation for %q", vp.Name)
			}
			codeGenerated++
		}
		return map[string]any{
			"persisted":      len(validations),
			"code_generated": codeGenerated,
		}, nil
	}); err != nil {
		return fail(err)
	}

	if finishErr := p.store.FinishRun(ctx, run.ID, model.RunStatusComplete, ""); finishErr != nil {
		log.Warn("pipeline: failed to finish run", zap.Error(finishErr))
	}
	run.Status = model.RunStatusComplete

	log.Info("pipeline: promotion complete",
		zap.String("run_id", run.ID),
		zap.String("target_project", targetProjectID),
		zap.Int("validations", len(validations)),
	)
	return run, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
