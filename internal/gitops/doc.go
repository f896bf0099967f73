// Package gitops installs the Argo CD controller on the control plane
// cluster, registers the edge clusters with it, and fans workload manifests
// out to every edge.
//
// All interaction happens through external CLI tools (kubectl, argocd); the
// package contains sequencing and templating only.
package gitops
