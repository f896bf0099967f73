package cluster

import (
	"context"
	"fmt"

	"fleetcheck/internal/command"
	"fleetcheck/internal/config"
)

// Role distinguishes the control plane cluster from the edge clusters.
type Role string

const (
	// RoleControlPlane hosts the GitOps controller.
	RoleControlPlane Role = "control-plane"
	// RoleEdge receives workloads and runs the assertion suites.
	RoleEdge Role = "edge"
)

// Cluster describes one member of the fleet.
type Cluster struct {
	// Name is the backend-visible cluster name
	Name string
	// Context is the kubeconfig context addressing the cluster
	Context string
	// Role is the cluster's role in the fleet
	Role Role
}

// Provisioner creates and destroys the fleet on one backend.
type Provisioner interface {
	// Up creates every cluster of the fleet and makes its kubeconfig
	// context available. Clusters are created in fleet order, control
	// plane first.
	Up(ctx context.Context) error

	// Down deletes every cluster of the fleet. It keeps going on
	// per-cluster errors and returns the first one encountered.
	Down(ctx context.Context) error

	// ControlPlane returns the fleet's control plane cluster.
	ControlPlane() Cluster

	// Edges returns the edge clusters in stable fleet order.
	Edges() []Cluster
}

// ControlPlaneName returns the control plane cluster name for a prefix.
func ControlPlaneName(prefix string) string {
	return fmt.Sprintf("%s-control-plane", prefix)
}

// EdgeName returns the name of edge cluster i (1-based) for a prefix.
func EdgeName(prefix string, i int) string {
	return fmt.Sprintf("%s-edge-%d", prefix, i)
}

// fleetNames returns all cluster names of a fleet, control plane first.
func fleetNames(cfg config.Config) []string {
	names := make([]string, 0, cfg.EdgeClusters+1)
	names = append(names, ControlPlaneName(cfg.NamePrefix))
	for i := 1; i <= cfg.EdgeClusters; i++ {
		names = append(names, EdgeName(cfg.NamePrefix, i))
	}
	return names
}

// New returns the provisioner for the configured backend.
func New(cfg config.Config, runner command.Runner) (Provisioner, error) {
	switch cfg.Backend {
	case config.BackendK3d:
		return NewK3d(cfg, runner), nil
	case config.BackendGKE:
		return NewGKE(cfg, runner), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
