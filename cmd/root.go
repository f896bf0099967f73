package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fleetcheck/internal/config"
	"fleetcheck/pkg/logging"
)

// Exit codes for CLI commands. These are part of the CI contract: pipelines
// distinguish "the harness broke" from "the harness ran and tests failed".
const (
	// ExitCodeSuccess indicates successful execution with all tests passing.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (provisioning failed, invalid
	// arguments, missing report).
	ExitCodeError = 1
	// ExitCodeTestsFailed indicates the run completed but recorded failing
	// tests.
	ExitCodeTestsFailed = 2
)

// TestFailureError signals a completed run with failing tests. The root
// command maps it to ExitCodeTestsFailed.
type TestFailureError struct {
	// Failures is the number of failing test cases
	Failures int
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("%d test(s) failed", e.Failures)
}

// rootCmd is the base command of the fleetcheck application.
var rootCmd = &cobra.Command{
	Use:   "fleetcheck",
	Short: "End-to-end test harness for multi-cluster GitOps deployments",
	Long: `fleetcheck provisions a control plane and a fleet of edge clusters,
installs Argo CD on the control plane, registers the edges, applies
per-cluster manifests, runs declarative assertion suites against every
edge and merges the results into one NUnit-style XML report.`,
	// SilenceUsage keeps handled errors from printing the usage text.
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	logLevel   string
	logFormat  string
	quiet      bool
)

// SetVersion sets the version for the root command. Called from main with
// the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the application version.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the CLI and exits the process with the mapped exit code.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "fleetcheck version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps an error to the process exit code.
func getExitCode(err error) int {
	var testFailure *TestFailureError
	if errors.As(err, &testFailure) {
		return ExitCodeTestsFailed
	}
	return ExitCodeError
}

// setupLogging initializes the logger from the persistent flags.
func setupLogging() error {
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return err
	}
	logging.Init(logging.ParseLevel(logLevel), format, os.Stderr)
	return nil
}

// loadConfig returns the effective configuration: the config file when
// given, the validated defaults otherwise.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(configPath)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newProvisionCmd())
	rootCmd.AddCommand(newDestroyCmd())
	rootCmd.AddCommand(newAggregateCmd())
}
