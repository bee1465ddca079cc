package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

func TestComputeRunStats(t *testing.T) {
	now := time.Now()
	runs := []model.PromotionRun{
		{Status: model.RunStatusComplete, CreatedAt: now.Add(-10 * time.Second), UpdatedAt: now},
		{Status: model.RunStatusComplete, CreatedAt: now.Add(-20 * time.Second), UpdatedAt: now},
		{Status: model.RunStatusPartial},
		{Status: model.RunStatusFailed},
		{Status: model.RunStatusQueued},
	}

	s := computeRunStats(runs)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Complete)
	assert.Equal(t, 1, s.Partial)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Other)
	assert.InDelta(t, 15.0, s.AvgDurSecs, 0.5)
}

func TestFormatRunsList(t *testing.T) {
	var buf bytes.Buffer
	formatRunsList(&buf, []model.PromotionRun{
		{
			ID:     "abcdef01-2345-6789-abcd-ef0123456789",
			Status: model.RunStatusComplete,
			Plan: model.PlanSummary{
				Source: model.RunTarget{Host: "dev", ProjectID: "proj-src"},
				Target: model.RunTarget{Host: "prod", ProjectID: "proj-tgt"},
			},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "abcdef01")
	assert.Contains(t, out, "dev/proj-src")
	assert.Contains(t, out, "complete")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abcdef01", truncateID("abcdef01-2345"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatTarget_TruncatesLongIDs(t *testing.T) {
	got := formatTarget(model.RunTarget{Host: "prod", ProjectID: "0123456789abcdef0123"})
	assert.Equal(t, "prod/0123456789ab...", got)
}
