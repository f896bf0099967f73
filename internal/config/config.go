package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend identifies the cluster provisioning backend.
type Backend string

const (
	// BackendK3d provisions clusters as local k3d containers.
	BackendK3d Backend = "k3d"
	// BackendGKE provisions clusters on Google Kubernetes Engine.
	BackendGKE Backend = "gke"
)

// GKEConfig holds the cloud backend settings.
type GKEConfig struct {
	// Project is the GCP project to create clusters in
	Project string `yaml:"project,omitempty"`
	// Zone is the compute zone for cluster nodes
	Zone string `yaml:"zone,omitempty"`
	// MachineType is the node machine type
	MachineType string `yaml:"machine_type,omitempty"`
}

// Config is the full harness configuration.
type Config struct {
	// Backend selects the provisioner (k3d or gke)
	Backend Backend `yaml:"backend"`
	// EdgeClusters is the number of edge clusters to provision
	EdgeClusters int `yaml:"edge_clusters"`
	// NamePrefix is the prefix for all cluster names
	NamePrefix string `yaml:"name_prefix"`
	// ManifestURL is the manifest URL template; the {{ .Cluster }}
	// placeholder is expanded per edge cluster
	ManifestURL string `yaml:"manifest_url"`
	// TestDir is the directory containing the KUTTL assertion suites
	TestDir string `yaml:"test_dir"`
	// ArtifactsDir is where per-cluster JSON reports are written
	ArtifactsDir string `yaml:"artifacts_dir"`
	// ResultsDir is where the merged XML report is written
	ResultsDir string `yaml:"results_dir"`
	// Timeout bounds the whole pipeline run
	Timeout time.Duration `yaml:"timeout"`
	// Parallel is the number of concurrent per-cluster test workers
	Parallel int `yaml:"parallel"`
	// GKE holds cloud backend settings, required when Backend is gke
	GKE GKEConfig `yaml:"gke,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backend:      BackendK3d,
		EdgeClusters: 2,
		NamePrefix:   "fleet",
		TestDir:      "tests/e2e",
		ArtifactsDir: "artifacts",
		ResultsDir:   "results",
		Timeout:      30 * time.Minute,
		Parallel:     1,
	}
}

// Load reads a configuration file and merges it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML in %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendK3d:
		// no extra settings required
	case BackendGKE:
		if c.GKE.Project == "" {
			return fmt.Errorf("gke.project is required for the gke backend")
		}
		if c.GKE.Zone == "" {
			return fmt.Errorf("gke.zone is required for the gke backend")
		}
	default:
		return fmt.Errorf("unknown backend %q: must be 'k3d' or 'gke'", c.Backend)
	}

	if c.EdgeClusters < 0 {
		return fmt.Errorf("edge_clusters cannot be negative, got %d", c.EdgeClusters)
	}

	if c.NamePrefix == "" {
		return fmt.Errorf("name_prefix is required")
	}
	if strings.ContainsAny(c.NamePrefix, " /_") {
		return fmt.Errorf("name_prefix %q must be a valid cluster name fragment (no spaces, slashes or underscores)", c.NamePrefix)
	}

	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	return nil
}
