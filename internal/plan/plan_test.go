package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writePlanFile(t, `
source:
  host: https://dev.docsmith.example.com
  project_id: proj-src-1
target:
  host: https://prod.docsmith.example.com
  project_id: proj-tgt-1
`)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://dev.docsmith.example.com", p.Source.Host)
	assert.Equal(t, "proj-tgt-1", p.Target.ProjectID)
}

func TestLoad_MissingSourceProject(t *testing.T) {
	path := writePlanFile(t, `
source:
  host: https://dev.docsmith.example.com
target:
  host: https://prod.docsmith.example.com
  project_id: proj-tgt-1
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.project_id")
}

func TestValidate_NoTargetProjectNeedsOrgAndWorkspace(t *testing.T) {
	p := &Plan{
		Source: Environment{Host: "https://dev", ProjectID: "proj-1"},
		Target: Environment{Host: "https://prod"},
	}
	require.Error(t, p.Validate())

	p.Target.Org = "acme"
	p.Target.Workspace = "main"
	require.NoError(t, p.Validate())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	p := &Plan{
		Source: Environment{Host: "https://dev", ProjectID: "proj-1"},
		Target: Environment{Host: "https://prod", ProjectID: "proj-2", Org: "acme", Workspace: "main"},
	}
	require.NoError(t, Save(path, p))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSummary(t *testing.T) {
	p := &Plan{
		Source: Environment{Host: "https://dev", ProjectID: "proj-1"},
		Target: Environment{Host: "https://prod", ProjectID: "proj-2"},
	}

	s := p.Summary()
	assert.Equal(t, "https://dev", s.Source.Host)
	assert.Equal(t, "proj-1", s.Source.ProjectID)
	assert.Equal(t, "proj-2", s.Target.ProjectID)
}
