// Package snapshot persists a source project's fetched documents as JSON
// files so fetching and promoting can run as separate CI steps.
package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/docsmith-ai/promote-cli/internal/model"
	"github.com/docsmith-ai/promote-cli/pkg/docsmith"
)

// File names inside a snapshot directory.
const (
	settingsFile    = "settings.json"
	udfsFile        = "udfs.json"
	schemaFile      = "schema.json"
	validationsFile = "validations.json"
)

// Snapshot is one project's state as fetched from the source environment.
type Snapshot struct {
	Settings    *model.SettingsDocument
	UDFs        map[string]model.UDF
	Schema      model.SchemaDocument
	Validations *model.ValidationDocument
}

// Fetch pulls all four documents from the source environment. The fetches
// run concurrently; this is the only parallelism in the tool, everything
// after fetch is strictly sequential.
func Fetch(ctx context.Context, client docsmith.Client, projectID string) (*Snapshot, error) {
	var snap Snapshot
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		settings, err := client.FetchSettings(gCtx, projectID)
		if err != nil {
			return eris.Wrap(err, "snapshot: fetch settings")
		}
		snap.Settings = settings
		return nil
	})
	g.Go(func() error {
		udfs, err := client.FetchUDFs(gCtx, projectID)
		if err != nil {
			return eris.Wrap(err, "snapshot: fetch udfs")
		}
		snap.UDFs = udfs
		return nil
	})
	g.Go(func() error {
		schema, err := client.FetchSchema(gCtx, projectID)
		if err != nil {
			return eris.Wrap(err, "snapshot: fetch schema")
		}
		snap.Schema = schema
		return nil
	})
	g.Go(func() error {
		validations, err := client.FetchValidations(gCtx, projectID)
		if err != nil {
			return eris.Wrap(err, "snapshot: fetch validations")
		}
		snap.Validations = validations
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save writes the snapshot to dir as pretty-printed JSON, creating dir if
// needed.
func Save(dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "snapshot: create dir %s", dir)
	}
	files := map[string]any{
		settingsFile:    snap.Settings,
		udfsFile:        snap.UDFs,
		schemaFile:      snap.Schema,
		validationsFile: snap.Validations,
	}
	for name, doc := range files {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return eris.Wrapf(err, "snapshot: marshal %s", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return eris.Wrapf(err, "snapshot: write %s", name)
		}
	}
	return nil
}

// Load reads a snapshot previously written by Save.
func Load(dir string) (*Snapshot, error) {
	var snap Snapshot
	if err := readJSON(filepath.Join(dir, settingsFile), &snap.Settings); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, udfsFile), &snap.UDFs); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, schemaFile), &snap.Schema); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, validationsFile), &snap.Validations); err != nil {
		return nil, err
	}
	return &snap, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "snapshot: read %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "snapshot: parse %s", path)
	}
	return nil
}
