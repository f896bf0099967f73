package cluster

import (
	"context"
	"fmt"

	"fleetcheck/internal/command"
	"fleetcheck/internal/config"
	"fleetcheck/pkg/logging"
)

// GKE provisions the fleet as Google Kubernetes Engine clusters.
type GKE struct {
	runner   command.Runner
	gke      config.GKEConfig
	clusters []Cluster
}

// NewGKE creates the GKE provisioner for the configured fleet.
func NewGKE(cfg config.Config, runner command.Runner) *GKE {
	names := fleetNames(cfg)

	clusters := make([]Cluster, 0, len(names))
	for i, name := range names {
		role := RoleEdge
		if i == 0 {
			role = RoleControlPlane
		}
		clusters = append(clusters, Cluster{
			Name: name,
			// gcloud get-credentials registers contexts under this scheme
			Context: fmt.Sprintf("gke_%s_%s_%s", cfg.GKE.Project, cfg.GKE.Zone, name),
			Role:    role,
		})
	}

	return &GKE{runner: runner, gke: cfg.GKE, clusters: clusters}
}

// Up creates every cluster and fetches its kubeconfig credentials.
func (g *GKE) Up(ctx context.Context) error {
	for _, c := range g.clusters {
		logging.Info("Cluster", "creating GKE cluster %s in %s/%s", c.Name, g.gke.Project, g.gke.Zone)

		createArgs := []string{
			"container", "clusters", "create", c.Name,
			"--project", g.gke.Project,
			"--zone", g.gke.Zone,
			"--num-nodes", "1",
			"--quiet",
		}
		if g.gke.MachineType != "" {
			createArgs = append(createArgs, "--machine-type", g.gke.MachineType)
		}

		if _, err := g.runner.Run(ctx, "gcloud", createArgs...); err != nil {
			return fmt.Errorf("failed to create GKE cluster %s: %w", c.Name, err)
		}

		_, err := g.runner.Run(ctx, "gcloud",
			"container", "clusters", "get-credentials", c.Name,
			"--project", g.gke.Project,
			"--zone", g.gke.Zone,
		)
		if err != nil {
			return fmt.Errorf("failed to fetch credentials for GKE cluster %s: %w", c.Name, err)
		}
	}
	return nil
}

// Down deletes every cluster, continuing past per-cluster errors.
func (g *GKE) Down(ctx context.Context) error {
	var firstErr error
	for _, c := range g.clusters {
		logging.Info("Cluster", "deleting GKE cluster %s", c.Name)

		_, err := g.runner.Run(ctx, "gcloud",
			"container", "clusters", "delete", c.Name,
			"--project", g.gke.Project,
			"--zone", g.gke.Zone,
			"--quiet",
		)
		if err != nil {
			logging.Warn("Cluster", "failed to delete GKE cluster %s: %v", c.Name, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete GKE cluster %s: %w", c.Name, err)
			}
		}
	}
	return firstErr
}

// ControlPlane returns the fleet's control plane cluster.
func (g *GKE) ControlPlane() Cluster {
	return g.clusters[0]
}

// Edges returns the edge clusters in fleet order.
func (g *GKE) Edges() []Cluster {
	return g.clusters[1:]
}
