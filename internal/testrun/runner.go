package testrun

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fleetcheck/internal/cluster"
	"fleetcheck/internal/command"
	"fleetcheck/pkg/logging"
)

// Outcome is the result of one cluster's suite run.
type Outcome struct {
	// Cluster is the cluster the suites ran against
	Cluster string
	// Passed is false when kuttl reported failing tests
	Passed bool
	// Err is the failure reported by the kuttl invocation, nil when Passed
	Err error
}

// Runner executes the assertion suites on edge clusters.
type Runner struct {
	cmd          command.Runner
	testDir      string
	artifactsDir string
	parallel     int
}

// NewRunner creates a runner for the given suite directory. parallel bounds
// the number of clusters tested concurrently; 1 means sequential.
func NewRunner(cmd command.Runner, testDir, artifactsDir string, parallel int) *Runner {
	if parallel < 1 {
		parallel = 1
	}
	return &Runner{
		cmd:          cmd,
		testDir:      testDir,
		artifactsDir: artifactsDir,
		parallel:     parallel,
	}
}

// RunAll runs the suites against every cluster and returns one outcome per
// cluster, in input order. Failing suites are recorded, not propagated: the
// batch always covers every cluster unless the context is cancelled.
func (r *Runner) RunAll(ctx context.Context, clusters []cluster.Cluster, runTimestamp string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(clusters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	for i, c := range clusters {
		g.Go(func() error {
			outcomes[i] = r.runCluster(gctx, c, runTimestamp)
			// Only context cancellation aborts the batch.
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, fmt.Errorf("test batch aborted: %w", err)
	}
	return outcomes, nil
}

func (r *Runner) runCluster(ctx context.Context, c cluster.Cluster, runTimestamp string) Outcome {
	logging.Info("TestRun", "running suites against %s", c.Name)

	// The report name yields {cluster}-{runTimestamp}.json in the
	// artifacts directory, the name the aggregator expects.
	_, err := r.cmd.Run(ctx, "kubectl",
		"kuttl", "test", r.testDir,
		"--kube-context", c.Context,
		"--report", "json",
		"--artifacts-dir", r.artifactsDir,
		"--report-name", fmt.Sprintf("%s-%s", c.Name, runTimestamp),
	)
	if err != nil {
		logging.Warn("TestRun", "suites failed on %s: %v", c.Name, err)
		return Outcome{Cluster: c.Name, Passed: false, Err: err}
	}

	return Outcome{Cluster: c.Name, Passed: true}
}
