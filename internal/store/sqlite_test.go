package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testPlan() model.PlanSummary {
	return model.PlanSummary{
		Source: model.RunTarget{Host: "https://dev", ProjectID: "proj-src"},
		Target: model.RunTarget{Host: "https://prod", ProjectID: "proj-tgt"},
	}
}

func TestSQLite_CreateRun_And_GetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testPlan())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, fetched.ID)
	assert.Equal(t, "proj-tgt", fetched.Plan.Target.ProjectID)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testPlan())
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, fetched.Status)
}

func TestSQLite_UpdateRunStatus_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "nonexistent", model.RunStatusRunning)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_FinishRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testPlan())
	require.NoError(t, err)

	require.NoError(t, st.FinishRun(ctx, run.ID, model.RunStatusPartial, "schema persisted but validations failed"))

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusPartial, fetched.Status)
	assert.Equal(t, "schema persisted but validations failed", fetched.Error)
}

func TestSQLite_RecordStage_And_GetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testPlan())
	require.NoError(t, err)

	require.NoError(t, st.RecordStage(ctx, run.ID, model.StageResult{
		Name:       model.StageSchemaReconciled,
		Status:     model.StageStatusComplete,
		DurationMS: 42,
		Metadata:   map[string]any{"new_classes": float64(2)},
	}))
	require.NoError(t, st.RecordStage(ctx, run.ID, model.StageResult{
		Name:   model.StageSchemaPersisted,
		Status: model.StageStatusFailed,
		Error:  "post schema: status 500",
	}))

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Stages, 2)
	assert.Equal(t, model.StageSchemaReconciled, fetched.Stages[0].Name)
	assert.Equal(t, int64(42), fetched.Stages[0].DurationMS)
	assert.Equal(t, float64(2), fetched.Stages[0].Metadata["new_classes"])
	assert.Equal(t, model.StageStatusFailed, fetched.Stages[1].Status)
	assert.Equal(t, "post schema: status 500", fetched.Stages[1].Error)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, testPlan())
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, testPlan())
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSQLite_ListRuns_FilterByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testPlan())
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete))

	_, err = st.CreateRun(ctx, testPlan())
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete, Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestSQLite_ListRuns_FilterByTargetProject(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, testPlan())
	require.NoError(t, err)

	other := testPlan()
	other.Target.ProjectID = "proj-other"
	_, err = st.CreateRun(ctx, other)
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{TargetProject: "proj-other", Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "proj-other", runs[0].Plan.Target.ProjectID)
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)

	require.NoError(t, st.Migrate(context.Background()))
}
