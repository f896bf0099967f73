package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"fleetcheck/internal/cluster"
	"fleetcheck/internal/command"
	"fleetcheck/internal/pipeline"
)

// newDestroyCmd creates the command that tears the fleet down.
func newDestroyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy",
		Short: "Delete the control plane and edge clusters",
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

			run := pipeline.NewRunContext(cfg)
			p := pipeline.New(quiet)
			p.Add("destroy clusters", func(ctx context.Context, run *pipeline.RunContext) error {
				return provisioner.Down(ctx)
			})

			_, err = p.Run(ctx, run)
			return err
		},
	}
}
