package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"fleetcheck/internal/cluster"
	"fleetcheck/internal/command"
	"fleetcheck/internal/pipeline"
)

// newProvisionCmd creates the command that only provisions the fleet, for
// iterating on suites against long-lived clusters.
func newProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Provision the control plane and edge clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()

			runner := command.NewRunner(logLevel == "debug")
			provisioner, err := cluster.New(cfg, runner)
			if err != nil {
				return err
			}
			readiness := cluster.NewReadiness()

			run := pipeline.NewRunContext(cfg)
			p := pipeline.New(quiet)
			p.Add("provision clusters", func(ctx context.Context, run *pipeline.RunContext) error {
				if err := provisioner.Up(ctx); err != nil {
					return err
				}
				fleet := append([]cluster.Cluster{provisioner.ControlPlane()}, provisioner.Edges()...)
				return readiness.WaitAll(ctx, fleet)
			})

			_, err = p.Run(ctx, run)
			return err
		},
	}
}
