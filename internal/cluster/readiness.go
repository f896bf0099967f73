package cluster

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"fleetcheck/pkg/logging"
)

// NodeLister is the slice of the Kubernetes API readiness checking needs.
type NodeLister interface {
	List(ctx context.Context, opts metav1.ListOptions) (*corev1.NodeList, error)
}

// NodeListerFactory builds a NodeLister for a kubeconfig context.
type NodeListerFactory func(kubeContext string) (NodeLister, error)

// Readiness gates pipeline progress on every cluster node being Ready.
// Freshly created clusters accept API requests before their nodes schedule
// workloads; applying manifests earlier produces flaky assertion runs.
type Readiness struct {
	factory  NodeListerFactory
	interval time.Duration
}

// NewReadiness creates a checker backed by the local kubeconfig.
func NewReadiness() *Readiness {
	return &Readiness{factory: kubeconfigNodeLister, interval: 5 * time.Second}
}

// NewReadinessWithFactory creates a checker with a custom API factory and
// poll interval.
func NewReadinessWithFactory(factory NodeListerFactory, interval time.Duration) *Readiness {
	return &Readiness{factory: factory, interval: interval}
}

// WaitAll blocks until every cluster has all nodes Ready or the context is
// done. Clusters are checked in fleet order.
func (r *Readiness) WaitAll(ctx context.Context, clusters []Cluster) error {
	for _, c := range clusters {
		if err := r.waitCluster(ctx, c); err != nil {
			return fmt.Errorf("cluster %s did not become ready: %w", c.Name, err)
		}
		logging.Info("Cluster", "all nodes of %s are ready", c.Name)
	}
	return nil
}

func (r *Readiness) waitCluster(ctx context.Context, c Cluster) error {
	nodes, err := r.factory(c.Context)
	if err != nil {
		return fmt.Errorf("failed to build client for context %s: %w", c.Context, err)
	}

	return wait.PollUntilContextCancel(ctx, r.interval, true, func(ctx context.Context) (bool, error) {
		list, err := nodes.List(ctx, metav1.ListOptions{})
		if err != nil {
			// The API server of a fresh cluster may still be starting.
			logging.Debug("Cluster", "node list for %s failed, retrying: %v", c.Name, err)
			return false, nil
		}
		if len(list.Items) == 0 {
			return false, nil
		}
		for _, node := range list.Items {
			if !nodeReady(node) {
				return false, nil
			}
		}
		return true, nil
	})
}

func nodeReady(node corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

// kubeconfigNodeLister builds a node lister from the default kubeconfig
// chain, pinned to the given context.
func kubeconfigNodeLister(kubeContext string) (NodeLister, error) {
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(),
		&clientcmd.ConfigOverrides{CurrentContext: kubeContext},
	)

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, err
	}

	return clientset.CoreV1().Nodes(), nil
}
