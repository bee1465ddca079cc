package model

import "encoding/json"

// SettingsDocument is the projects endpoint response: settings for every
// project visible to the token.
type SettingsDocument struct {
	Projects []ProjectSettings `json:"projects"`
}

// ProjectSettings holds one project's configuration. The id, filesystem
// roots, workspace and name are environment-local and are stripped before
// patching the settings onto another environment's project.
type ProjectSettings struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Description    string          `json:"desc,omitempty"`
	LLM            string          `json:"llm,omitempty"`
	ProjectRoot    string          `json:"project_root,omitempty"`
	DataRoot       string          `json:"data_root,omitempty"`
	Workspace      string          `json:"workspace,omitempty"`
	ExtractionMode string          `json:"extraction_mode,omitempty"`
	ReaderProfile  json.RawMessage `json:"reader_profile,omitempty"`
}

// ProjectByID returns the settings entry for the given project id, or nil.
func (d *SettingsDocument) ProjectByID(id string) *ProjectSettings {
	for i := range d.Projects {
		if d.Projects[i].ID == id {
			return &d.Projects[i]
		}
	}
	return nil
}
