// Package store persists promotion run history. Two backends exist: SQLite
// for single-operator use and Postgres for shared CI environments.
package store

import (
	"context"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status        model.RunStatus `json:"status,omitempty"`
	TargetProject string          `json:"target_project,omitempty"`
	Limit         int             `json:"limit,omitempty"`
	Offset        int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for promotion run history.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, plan model.PlanSummary) (*model.PromotionRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	FinishRun(ctx context.Context, runID string, status model.RunStatus, runErr string) error
	GetRun(ctx context.Context, runID string) (*model.PromotionRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.PromotionRun, error)

	// Stages
	RecordStage(ctx context.Context, runID string, stage model.StageResult) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
