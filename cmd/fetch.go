package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docsmith-ai/promote-cli/internal/plan"
	"github.com/docsmith-ai/promote-cli/internal/snapshot"
)

var (
	fetchPlanPath string
	fetchOutDir   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the source project into a local snapshot",
	Long:  "Downloads the source project's settings, schema, UDFs and validation rules and writes them as JSON files for a later run.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		planPath := fetchPlanPath
		if planPath == "" {
			planPath = cfg.Promote.PlanPath
		}
		pl, err := plan.Load(planPath)
		if err != nil {
			return err
		}

		src, err := sourceClient(pl)
		if err != nil {
			return err
		}

		zap.L().Info("fetching source project",
			zap.String("host", pl.Source.Host),
			zap.String("project", pl.Source.ProjectID),
		)

		snap, err := snapshot.Fetch(ctx, src, pl.Source.ProjectID)
		if err != nil {
			return err
		}
		if snap.Settings.ProjectByID(pl.Source.ProjectID) == nil {
			return eris.Errorf("source project %s not visible to the configured token", pl.Source.ProjectID)
		}

		outDir := fetchOutDir
		if outDir == "" {
			outDir = cfg.Promote.SnapshotDir
		}
		if err := snapshot.Save(outDir, snap); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Fetched %d classes, %d UDFs, %d validations into %s\n",
			len(snap.Schema), len(snap.UDFs), len(snap.Validations.Rules), outDir)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPlanPath, "plan", "", "plan file path (default from config)")
	fetchCmd.Flags().StringVar(&fetchOutDir, "out", "", "snapshot output directory (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
