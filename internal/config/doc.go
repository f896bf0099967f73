// Package config loads and validates the fleetcheck harness configuration.
//
// Configuration is a single YAML document describing the cluster fleet
// (backend, edge cluster count, naming), the GitOps inputs (manifest URL
// template), and the artifact locations used by the test runner and the
// result aggregator. Every field can be overridden by command-line flags;
// the merged result is validated before any pipeline stage runs.
package config
