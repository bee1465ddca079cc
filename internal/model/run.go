package model

import "time"

// RunStatus is the lifecycle state of a promotion run.
type RunStatus string

const (
	RunStatusQueued  RunStatus = "queued"
	RunStatusRunning RunStatus = "running"
	// RunStatusPartial marks a run that persisted the schema on the target
	// but failed before all validations were persisted. The target is left
	// part-migrated; there is no automatic rollback.
	RunStatusPartial  RunStatus = "partial"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Stage names, in pipeline order.
const (
	StageFetched               = "fetched"
	StageSettingsMigrated      = "settings_migrated"
	StageSchemaReconciled      = "schema_reconciled"
	StageSchemaPersisted       = "schema_persisted"
	StageIDsMapped             = "ids_mapped"
	StageValidationsReconciled = "validations_reconciled"
	StageValidationsPersisted  = "validations_persisted"
)

// StageStatus is the terminal state of one pipeline stage.
type StageStatus string

const (
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
)

// StageResult records one executed pipeline stage.
type StageResult struct {
	Name       string         `json:"name"`
	Status     StageStatus    `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RunTarget identifies one side of a promotion.
type RunTarget struct {
	Host      string `json:"host"`
	ProjectID string `json:"project_id"`
}

// PlanSummary is the run-relevant subset of a promotion plan, stored with
// each run for later inspection.
type PlanSummary struct {
	Source RunTarget `json:"source"`
	Target RunTarget `json:"target"`
}

// PromotionRun is one recorded execution of the promotion pipeline.
type PromotionRun struct {
	ID        string        `json:"id"`
	Plan      PlanSummary   `json:"plan"`
	Status    RunStatus     `json:"status"`
	Stages    []StageResult `json:"stages,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
