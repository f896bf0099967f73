package testrun

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetcheck/internal/cluster"
	"fleetcheck/internal/command"
)

const runTimestamp = "20260823-101500"

func edgeClusters() []cluster.Cluster {
	return []cluster.Cluster{
		{Name: "fleet-edge-1", Context: "k3d-fleet-edge-1", Role: cluster.RoleEdge},
		{Name: "fleet-edge-2", Context: "k3d-fleet-edge-2", Role: cluster.RoleEdge},
	}
}

func TestRunAllSequential(t *testing.T) {
	runner := command.NewFakeRunner()
	r := NewRunner(runner, "tests/e2e", "artifacts", 1)

	outcomes, err := r.RunAll(context.Background(), edgeClusters(), runTimestamp)
	require.NoError(t, err)

	require.Len(t, outcomes, 2)
	assert.Equal(t, "fleet-edge-1", outcomes[0].Cluster)
	assert.True(t, outcomes[0].Passed)
	assert.True(t, outcomes[1].Passed)

	lines := runner.CommandLines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "kubectl kuttl test tests/e2e")
	assert.Contains(t, lines[0], "--kube-context k3d-fleet-edge-1")
	assert.Contains(t, lines[0], "--report json")
	assert.Contains(t, lines[0], "--artifacts-dir artifacts")
	assert.Contains(t, lines[0], "--report-name fleet-edge-1-"+runTimestamp)
	assert.Contains(t, lines[1], "--kube-context k3d-fleet-edge-2")
}

func TestRunAllRecordsFailureAndContinues(t *testing.T) {
	runner := command.NewFakeRunner()
	runner.Responses["kubectl kuttl test tests/e2e --kube-context k3d-fleet-edge-1"] = command.FakeResponse{
		Err: errors.New("exit status 1"),
	}
	r := NewRunner(runner, "tests/e2e", "artifacts", 1)

	outcomes, err := r.RunAll(context.Background(), edgeClusters(), runTimestamp)
	require.NoError(t, err, "a failing suite must not abort the batch")

	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Passed)
	assert.Error(t, outcomes[0].Err)
	assert.True(t, outcomes[1].Passed, "the second cluster still runs")

	require.Len(t, runner.Calls(), 2)
}

func TestRunAllParallelCoversEveryCluster(t *testing.T) {
	runner := command.NewFakeRunner()
	r := NewRunner(runner, "tests/e2e", "artifacts", 2)

	outcomes, err := r.RunAll(context.Background(), edgeClusters(), runTimestamp)
	require.NoError(t, err)

	// Outcome order matches input order even with concurrent workers.
	require.Len(t, outcomes, 2)
	assert.Equal(t, "fleet-edge-1", outcomes[0].Cluster)
	assert.Equal(t, "fleet-edge-2", outcomes[1].Cluster)

	contexts := make([]string, 0, 2)
	for _, call := range runner.Calls() {
		for i, arg := range call.Args {
			if arg == "--kube-context" {
				contexts = append(contexts, call.Args[i+1])
			}
		}
	}
	sort.Strings(contexts)
	assert.Equal(t, []string{"k3d-fleet-edge-1", "k3d-fleet-edge-2"}, contexts)
}

func TestRunAllAbortsOnCancelledContext(t *testing.T) {
	runner := command.NewFakeRunner()
	r := NewRunner(runner, "tests/e2e", "artifacts", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RunAll(ctx, edgeClusters(), runTimestamp)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerNormalizesParallelism(t *testing.T) {
	r := NewRunner(command.NewFakeRunner(), "tests/e2e", "artifacts", 0)
	assert.Equal(t, 1, r.parallel)
}
