package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"fleetcheck/internal/cluster"
	"fleetcheck/internal/formatting"
	"fleetcheck/internal/report"
	"fleetcheck/internal/testrun"
)

// newAggregateCmd creates the command that merges existing per-cluster
// reports without touching any cluster. It serves CI setups where the
// suites run elsewhere and only the reports land in the artifacts
// directory.
func newAggregateCmd() *cobra.Command {
	var runTimestamp string
	var wait bool
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Merge per-cluster JSON reports into one XML report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			clusters := make([]string, 0, cfg.EdgeClusters)
			files := make([]string, 0, cfg.EdgeClusters)
			for i := 1; i <= cfg.EdgeClusters; i++ {
				name := cluster.EdgeName(cfg.NamePrefix, i)
				clusters = append(clusters, name)
				files = append(files, report.ReportFileName(name, runTimestamp))
			}

			if wait {
				ctx, cancel := context.WithTimeout(cmd.Context(), waitTimeout)
				defer cancel()

				watcher := testrun.NewReportWatcher(cfg.ArtifactsDir)
				if err := watcher.Wait(ctx, files); err != nil {
					return err
				}
			}

			aggregator := report.NewAggregator(cfg.ArtifactsDir, cfg.ResultsDir)
			summary, err := aggregator.Aggregate(clusters, runTimestamp)
			if err != nil {
				return err
			}

			if !quiet {
				formatting.RenderSummary(cmd.OutOrStdout(), summary)
			}
			if !summary.Succeeded() {
				return &TestFailureError{Failures: summary.Failures}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runTimestamp, "timestamp", "", "run timestamp naming the report files (required)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for all report files to appear before aggregating")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 10*time.Minute, "how long --wait waits for reports")
	_ = cmd.MarkFlagRequired("timestamp")

	return cmd
}
