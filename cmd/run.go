package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"fleetcheck/internal/cluster"
	"fleetcheck/internal/command"
	"fleetcheck/internal/formatting"
	"fleetcheck/internal/gitops"
	"fleetcheck/internal/pipeline"
	"fleetcheck/internal/report"
	"fleetcheck/internal/testrun"
)

// newRunCmd creates the command driving the full pipeline: provision,
// install the controller, apply manifests, run the suites and aggregate.
func newRunCmd() *cobra.Command {
	var manifestURL string
	var keep bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Provision the fleet, run every suite and aggregate the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if manifestURL != "" {
				cfg.ManifestURL = manifestURL
			}
			if cfg.ManifestURL == "" {
				return errors.New("a manifest URL template is required: set manifest_url in the config file or pass --manifest-url")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()

			runner := command.NewRunner(logLevel == "debug")
			provisioner, err := cluster.New(cfg, runner)
			if err != nil {
				return err
			}

			run := pipeline.NewRunContext(cfg)
			readiness := cluster.NewReadiness()
			installer := gitops.NewInstaller(runner)
			applier := gitops.NewApplier(runner, cfg.ManifestURL)
			suites := testrun.NewRunner(runner, cfg.TestDir, cfg.ArtifactsDir, cfg.Parallel)
			aggregator := report.NewAggregator(cfg.ArtifactsDir, cfg.ResultsDir)

			var summary *report.Summary

			p := pipeline.New(quiet)
			p.Add("provision clusters", func(ctx context.Context, run *pipeline.RunContext) error {
				if err := provisioner.Up(ctx); err != nil {
					return err
				}
				fleet := append([]cluster.Cluster{provisioner.ControlPlane()}, provisioner.Edges()...)
				return readiness.WaitAll(ctx, fleet)
			})
			p.Add("install gitops controller", func(ctx context.Context, run *pipeline.RunContext) error {
				return installer.Setup(ctx, provisioner.ControlPlane(), provisioner.Edges())
			})
			p.Add("apply manifests", func(ctx context.Context, run *pipeline.RunContext) error {
				return applier.ApplyAll(ctx, provisioner.Edges())
			})
			p.Add("run test suites", func(ctx context.Context, run *pipeline.RunContext) error {
				outcomes, err := suites.RunAll(ctx, provisioner.Edges(), run.Timestamp)
				if err != nil {
					return err
				}
				for _, outcome := range outcomes {
					if !outcome.Passed {
						run.MarkTestFailure()
					}
				}
				return nil
			})
			p.Add("aggregate results", func(ctx context.Context, run *pipeline.RunContext) error {
				names := make([]string, 0, len(provisioner.Edges()))
				for _, edge := range provisioner.Edges() {
					names = append(names, edge.Name)
				}
				s, err := aggregator.Aggregate(names, run.Timestamp)
				if err != nil {
					return err
				}
				summary = s
				if !s.Succeeded() {
					run.MarkTestFailure()
				}
				return nil
			})
			if !keep {
				p.AddCleanup("destroy clusters", func(ctx context.Context, run *pipeline.RunContext) error {
					return provisioner.Down(ctx)
				})
			}

			results, runErr := p.Run(ctx, run)

			if !quiet {
				formatting.RenderSteps(cmd.OutOrStdout(), results)
			}
			if summary != nil {
				formatting.RenderSummary(cmd.OutOrStdout(), summary)
			}

			if runErr != nil {
				return runErr
			}
			if run.TestsFailed() {
				failures := 0
				if summary != nil {
					failures = summary.Failures
				}
				return &TestFailureError{Failures: failures}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestURL, "manifest-url", "", "manifest URL template, overrides the config file")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the clusters after the run")
	return cmd
}
