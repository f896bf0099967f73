package cluster

import (
	"context"
	"fmt"

	"fleetcheck/internal/command"
	"fleetcheck/internal/config"
	"fleetcheck/pkg/logging"
)

// K3d provisions the fleet as local k3d clusters.
type K3d struct {
	runner   command.Runner
	clusters []Cluster
}

// NewK3d creates the k3d provisioner for the configured fleet.
func NewK3d(cfg config.Config, runner command.Runner) *K3d {
	names := fleetNames(cfg)

	clusters := make([]Cluster, 0, len(names))
	for i, name := range names {
		role := RoleEdge
		if i == 0 {
			role = RoleControlPlane
		}
		clusters = append(clusters, Cluster{
			Name: name,
			// k3d registers contexts under a fixed prefix
			Context: fmt.Sprintf("k3d-%s", name),
			Role:    role,
		})
	}

	return &K3d{runner: runner, clusters: clusters}
}

// Up creates every cluster. k3d merges the kubeconfig entry on create, so
// no credential step is needed.
func (k *K3d) Up(ctx context.Context) error {
	for _, c := range k.clusters {
		logging.Info("Cluster", "creating k3d cluster %s", c.Name)

		_, err := k.runner.Run(ctx, "k3d",
			"cluster", "create", c.Name,
			"--wait",
			"--kubeconfig-update-default",
			"--kubeconfig-switch-context=false",
		)
		if err != nil {
			return fmt.Errorf("failed to create k3d cluster %s: %w", c.Name, err)
		}
	}
	return nil
}

// Down deletes every cluster, continuing past per-cluster errors.
func (k *K3d) Down(ctx context.Context) error {
	var firstErr error
	for _, c := range k.clusters {
		logging.Info("Cluster", "deleting k3d cluster %s", c.Name)

		if _, err := k.runner.Run(ctx, "k3d", "cluster", "delete", c.Name); err != nil {
			logging.Warn("Cluster", "failed to delete k3d cluster %s: %v", c.Name, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete k3d cluster %s: %w", c.Name, err)
			}
		}
	}
	return firstErr
}

// ControlPlane returns the fleet's control plane cluster.
func (k *K3d) ControlPlane() Cluster {
	return k.clusters[0]
}

// Edges returns the edge clusters in fleet order.
func (k *K3d) Edges() []Cluster {
	return k.clusters[1:]
}
