package gitops

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"fleetcheck/internal/cluster"
	"fleetcheck/internal/command"
	"fleetcheck/pkg/logging"
)

const (
	argoNamespace = "argocd"

	// installManifestURL is the upstream Argo CD install manifest.
	installManifestURL = "https://raw.githubusercontent.com/argoproj/argo-cd/stable/manifests/install.yaml"

	// rolloutTimeout bounds the wait for the argocd-server deployment.
	rolloutTimeout = "300s"
)

// Installer sets up Argo CD on the control plane and registers edge
// clusters with it.
type Installer struct {
	runner       command.Runner
	pollInterval time.Duration
}

// NewInstaller creates an installer using the given command runner.
func NewInstaller(runner command.Runner) *Installer {
	return &Installer{runner: runner, pollInterval: 5 * time.Second}
}

// Setup performs the full controller setup: install on the control plane,
// expose the API server, log in with the initial admin credentials and
// register every edge cluster.
func (i *Installer) Setup(ctx context.Context, controlPlane cluster.Cluster, edges []cluster.Cluster) error {
	if err := i.Install(ctx, controlPlane); err != nil {
		return err
	}

	server, err := i.Expose(ctx, controlPlane)
	if err != nil {
		return err
	}

	if err := i.Login(ctx, controlPlane, server); err != nil {
		return err
	}

	return i.RegisterEdges(ctx, edges)
}

// Install applies the Argo CD manifests on the control plane and waits for
// the API server deployment to roll out.
func (i *Installer) Install(ctx context.Context, controlPlane cluster.Cluster) error {
	logging.Info("GitOps", "installing Argo CD on %s", controlPlane.Name)

	result, err := i.runner.Run(ctx, "kubectl",
		"--context", controlPlane.Context,
		"create", "namespace", argoNamespace,
	)
	if err != nil && !strings.Contains(result.Stderr, "AlreadyExists") &&
		!strings.Contains(result.Stderr, "already exists") {
		return fmt.Errorf("failed to create namespace %s: %w", argoNamespace, err)
	}

	_, err = i.runner.Run(ctx, "kubectl",
		"--context", controlPlane.Context,
		"-n", argoNamespace,
		"apply", "-f", installManifestURL,
	)
	if err != nil {
		return fmt.Errorf("failed to apply Argo CD manifests: %w", err)
	}

	_, err = i.runner.Run(ctx, "kubectl",
		"--context", controlPlane.Context,
		"-n", argoNamespace,
		"rollout", "status", "deployment/argocd-server",
		"--timeout", rolloutTimeout,
	)
	if err != nil {
		return fmt.Errorf("argocd-server did not roll out: %w", err)
	}

	return nil
}

// Expose switches the argocd-server service to a LoadBalancer and waits for
// its external address. It returns the address the argocd CLI should log
// in to.
func (i *Installer) Expose(ctx context.Context, controlPlane cluster.Cluster) (string, error) {
	_, err := i.runner.Run(ctx, "kubectl",
		"--context", controlPlane.Context,
		"-n", argoNamespace,
		"patch", "svc", "argocd-server",
		"-p", `{"spec": {"type": "LoadBalancer"}}`,
	)
	if err != nil {
		return "", fmt.Errorf("failed to expose argocd-server: %w", err)
	}

	var address string
	err = wait.PollUntilContextCancel(ctx, i.pollInterval, true, func(ctx context.Context) (bool, error) {
		result, err := i.runner.Run(ctx, "kubectl",
			"--context", controlPlane.Context,
			"-n", argoNamespace,
			"get", "svc", "argocd-server",
			"-o", "jsonpath={.status.loadBalancer.ingress[0].ip}",
		)
		if err != nil {
			return false, err
		}
		address = strings.TrimSpace(result.Stdout)
		return address != "", nil
	})
	if err != nil {
		return "", fmt.Errorf("argocd-server got no external address: %w", err)
	}

	logging.Debug("GitOps", "argocd-server reachable at %s", address)
	return address, nil
}

// Login reads the initial admin secret and authenticates the argocd CLI
// against the exposed server.
func (i *Installer) Login(ctx context.Context, controlPlane cluster.Cluster, server string) error {
	result, err := i.runner.Run(ctx, "kubectl",
		"--context", controlPlane.Context,
		"-n", argoNamespace,
		"get", "secret", "argocd-initial-admin-secret",
		"-o", "jsonpath={.data.password}",
	)
	if err != nil {
		return fmt.Errorf("failed to read initial admin secret: %w", err)
	}

	password, err := base64.StdEncoding.DecodeString(strings.TrimSpace(result.Stdout))
	if err != nil {
		return fmt.Errorf("initial admin secret is not valid base64: %w", err)
	}

	_, err = i.runner.Run(ctx, "argocd",
		"login", server,
		"--username", "admin",
		"--password", string(password),
		"--insecure",
	)
	if err != nil {
		return fmt.Errorf("argocd login to %s failed: %w", server, err)
	}

	logging.Info("GitOps", "logged in to Argo CD at %s", server)
	return nil
}

// RegisterEdges adds every edge cluster to the controller, in fleet order.
func (i *Installer) RegisterEdges(ctx context.Context, edges []cluster.Cluster) error {
	for _, edge := range edges {
		logging.Info("GitOps", "registering edge cluster %s", edge.Name)

		_, err := i.runner.Run(ctx, "argocd",
			"cluster", "add", edge.Context,
			"--name", edge.Name,
			"--yes",
		)
		if err != nil {
			return fmt.Errorf("failed to register edge cluster %s: %w", edge.Name, err)
		}
	}
	return nil
}
