package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docsmith-ai/promote-cli/internal/model"
	"github.com/docsmith-ai/promote-cli/internal/pipeline"
	"github.com/docsmith-ai/promote-cli/internal/plan"
	"github.com/docsmith-ai/promote-cli/internal/snapshot"
)

var (
	runPlanPath    string
	runSnapshotDir string
	runFetch       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Promote the source project onto the target environment",
	Long:  "Replays a fetched snapshot onto the target project: settings, schema, UDFs, then validation rules. Use --fetch to pull a fresh snapshot first.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		planPath := runPlanPath
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
		tgt, err := targetClient(pl)
		if err != nil {
			return err
		}

		snapDir := runSnapshotDir
		if snapDir == "" {
			snapDir = cfg.Promote.SnapshotDir
		}

		var snap *snapshot.Snapshot
		if runFetch {
			snap, err = snapshot.Fetch(ctx, src, pl.Source.ProjectID)
			if err != nil {
				return err
			}
			if err := snapshot.Save(snapDir, snap); err != nil {
				return err
			}
		} else {
			snap, err = snapshot.Load(snapDir)
			if err != nil {
				return err
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		p := pipeline.New(pl, src, tgt, st, cfg.Promote.SettleDelay())

		targetProjectID, created, err := p.EnsureProject(ctx, snap)
		if err != nil {
			return err
		}
		if created {
			zap.L().Info("created target project", zap.String("project", targetProjectID))
			if err := plan.Save(planPath, pl); err != nil {
				return err
			}
		}

		run, runErr := p.Run(ctx, snap)
		if run != nil {
			printRunSummary(run)
		}
		return runErr
	},
}

func printRunSummary(run *model.PromotionRun) {
	fmt.Fprintf(os.Stdout, "Run %s: %s\n", run.ID, run.Status)
	for _, st := range run.Stages {
		line := fmt.Sprintf("  %-24s %-8s %6dms", st.Name, st.Status, st.DurationMS)
		if st.Error != "" {
			line += "  " + st.Error
		}
		fmt.Fprintln(os.Stdout, line)
	}
}

func init() {
	runCmd.Flags().StringVar(&runPlanPath, "plan", "", "plan file path (default from config)")
	runCmd.Flags().StringVar(&runSnapshotDir, "snapshot", "", "snapshot directory (default from config)")
	runCmd.Flags().BoolVar(&runFetch, "fetch", false, "fetch a fresh snapshot before promoting")
	rootCmd.AddCommand(runCmd)
}
