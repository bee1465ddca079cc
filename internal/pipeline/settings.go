package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

// settingsPatch returns the subset of project settings that transfers across
// environments. The id, name, filesystem roots and workspace stay local to
// the environment they came from.
func settingsPatch(src model.ProjectSettings) model.ProjectSettings {
	return model.ProjectSettings{
		Description:    src.Description,
		LLM:            src.LLM,
		ExtractionMode: src.ExtractionMode,
		ReaderProfile:  src.ReaderProfile,
	}
}

// migrateSettings patches the source project's portable settings onto the
// target project.
func (p *Pipeline) migrateSettings(ctx context.Context, settings *model.SettingsDocument, targetProjectID string) error {
	src := settings.ProjectByID(p.plan.Source.ProjectID)
	if src == nil {
		return eris.Errorf("pipeline: source project %s not present in fetched settings", p.plan.Source.ProjectID)
	}
	return p.target.PatchSettings(ctx, targetProjectID, settingsPatch(*src))
}
