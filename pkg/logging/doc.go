// Package logging provides the structured logging system for fleetcheck.
//
// It is a thin layer over Go's standard slog package. Every log entry carries
// a subsystem identifier so records from the different pipeline stages
// (Provisioner, GitOps, TestRun, Aggregator) can be filtered downstream, plus
// the usual level and timestamp fields.
//
// Two output formats are supported:
//   - text: human-readable, the default for interactive use
//   - json: machine-readable, intended for CI log collectors
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Aggregator", "merged %d cluster reports", n)
//	logging.Error("Provisioner", err, "failed to create cluster %s", name)
//
// Initialization happens once at CLI startup; the package functions are safe
// for concurrent use afterwards.
package logging
