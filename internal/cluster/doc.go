// Package cluster provisions and tears down the fleet's Kubernetes
// clusters.
//
// A fleet consists of one control plane cluster hosting the GitOps
// controller and N edge clusters receiving workloads. Two backends are
// supported: k3d for local container-based clusters and GKE for cloud
// clusters. Both backends shell out to their respective CLI tools; cluster
// naming and kubeconfig context names are deterministic so later pipeline
// steps can address clusters without backend knowledge.
package cluster
