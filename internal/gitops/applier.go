package gitops

import (
	"context"
	"fmt"

	"fleetcheck/internal/cluster"
	"fleetcheck/internal/command"
	"fleetcheck/pkg/logging"
)

// Applier expands the manifest URL template per edge cluster and applies
// the result to that cluster's context.
type Applier struct {
	runner      command.Runner
	urlTemplate string
}

// NewApplier creates an applier for the given manifest URL template.
func NewApplier(runner command.Runner, urlTemplate string) *Applier {
	return &Applier{runner: runner, urlTemplate: urlTemplate}
}

// ApplyAll applies the expanded manifest to every edge cluster in fleet
// order. The first failure aborts: later pipeline stages assume every edge
// received its manifests.
func (a *Applier) ApplyAll(ctx context.Context, edges []cluster.Cluster) error {
	for _, edge := range edges {
		url, err := ExpandManifestURL(a.urlTemplate, edge.Name)
		if err != nil {
			return err
		}

		logging.Info("GitOps", "applying %s to %s", url, edge.Name)

		_, err = a.runner.Run(ctx, "kubectl",
			"--context", edge.Context,
			"apply", "-f", url,
		)
		if err != nil {
			return fmt.Errorf("failed to apply manifests to %s: %w", edge.Name, err)
		}
	}
	return nil
}
