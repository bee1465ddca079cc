// Package plan loads the promotion plan file describing the source and
// target environments of a promotion. Tokens never live in the plan; they
// come from configuration.
package plan

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/docsmith-ai/promote-cli/internal/model"
)

// Environment identifies one side of a promotion.
type Environment struct {
	Host      string `yaml:"host"`
	ProjectID string `yaml:"project_id,omitempty"`
	Org       string `yaml:"org,omitempty"`
	Workspace string `yaml:"workspace,omitempty"`
}

// Plan is the parsed promotion plan. Target.ProjectID may be empty; the
// promotion then creates a build project on the target and writes the
// assigned id back to the plan file.
type Plan struct {
	Source Environment `yaml:"source"`
	Target Environment `yaml:"target"`
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "plan: read %s", path)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "plan: parse %s", path)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the plan back to disk, preserving the assigned target project
// id across fetch/promote invocations.
func Save(path string, p *Plan) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "plan: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "plan: write %s", path)
	}
	return nil
}

// Validate checks the fields every promotion needs. Target project id and
// org/workspace are conditional: a missing target project requires org and
// workspace to create one.
func (p *Plan) Validate() error {
	switch {
	case p.Source.Host == "":
		return eris.New("plan: source.host is required")
	case p.Source.ProjectID == "":
		return eris.New("plan: source.project_id is required")
	case p.Target.Host == "":
		return eris.New("plan: target.host is required")
	}
	if p.Target.ProjectID == "" && (p.Target.Org == "" || p.Target.Workspace == "") {
		return eris.New("plan: target.org and target.workspace are required when target.project_id is unset")
	}
	return nil
}

// Summary returns the run-record subset of the plan.
func (p *Plan) Summary() model.PlanSummary {
	return model.PlanSummary{
		Source: model.RunTarget{Host: p.Source.Host, ProjectID: p.Source.ProjectID},
		Target: model.RunTarget{Host: p.Target.Host, ProjectID: p.Target.ProjectID},
	}
}
