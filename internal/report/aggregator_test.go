package report

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runTimestamp = "20260823-101500"

// writeReport drops a raw JSON report for a cluster into the artifacts dir.
func writeReport(t *testing.T, artifactsDir, cluster, content string) {
	t.Helper()
	path := filepath.Join(artifactsDir, ReportFileName(cluster, runTimestamp))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// readResults parses the merged XML report back into its document form.
func readResults(t *testing.T, path string) TestResults {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc TestResults
	require.NoError(t, xml.Unmarshal(data, &doc), "output must be well-formed XML")
	return doc
}

func newTestAggregator(t *testing.T) (*Aggregator, string, string) {
	t.Helper()
	artifactsDir := t.TempDir()
	resultsDir := filepath.Join(t.TempDir(), "results")
	return NewAggregator(artifactsDir, resultsDir), artifactsDir, resultsDir
}

func TestAggregate_CountsCasesNotDeclaredTests(t *testing.T) {
	aggregator, artifactsDir, _ := newTestAggregator(t)

	// The suite declares 5 tests but only carries 3 cases.
	writeReport(t, artifactsDir, "edge-1", `{
		"testsuite": [{
			"name": "deploy", "tests": 5, "time": 9.0,
			"testcase": [
				{"classname": "deploy", "name": "step-1", "time": 1.0, "assertions": 2, "failure": null},
				{"classname": "deploy", "name": "step-2", "time": 1.0, "assertions": 1, "failure": null},
				{"classname": "deploy", "name": "step-3", "time": 1.0, "assertions": 1, "failure": null}
			]
		}]
	}`)

	summary, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 0, summary.Failures)
	assert.True(t, summary.Succeeded())

	doc := readResults(t, summary.OutputPath)
	assert.Equal(t, 3, doc.Total)
}

func TestAggregate_FailureCountersAndOutcomes(t *testing.T) {
	aggregator, artifactsDir, _ := newTestAggregator(t)

	writeReport(t, artifactsDir, "edge-1", `{
		"testsuite": [
			{
				"name": "healthy", "tests": 1, "time": 0.5,
				"testcase": [
					{"classname": "healthy", "name": "assert-ready", "time": 0.5, "assertions": 1, "failure": null}
				]
			},
			{
				"name": "broken", "tests": 2, "time": 2.0,
				"testcase": [
					{"classname": "broken", "name": "assert-sync", "time": 1.0, "assertions": 1,
						"failure": {"message": "app out of sync", "text": "status was Degraded"}},
					{"classname": "broken", "name": "assert-pods", "time": 1.0, "assertions": 2, "failure": null}
				]
			}
		]
	}`)

	summary, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Failures)
	assert.False(t, summary.Succeeded())

	doc := readResults(t, summary.OutputPath)
	require.Len(t, doc.Suites, 2)

	healthy := doc.Suites[0]
	assert.Equal(t, "Success", healthy.Result)
	assert.Equal(t, "True", healthy.Success)

	broken := doc.Suites[1]
	assert.Equal(t, "Failure", broken.Result)
	assert.Equal(t, "False", broken.Success)
	assert.Equal(t, "KUTTL", broken.Type)

	require.Len(t, broken.Results.Cases, 2)
	failing := broken.Results.Cases[0]
	assert.Equal(t, "broken-assert-sync", failing.Name)
	assert.Equal(t, "Failure", failing.Result)
	assert.Equal(t, "False", failing.Success)
	require.NotNil(t, failing.Failure)
	assert.Equal(t, "app out of sync: status was Degraded", failing.Failure.Message)

	passing := broken.Results.Cases[1]
	assert.Equal(t, "Success", passing.Result)
	assert.Nil(t, passing.Failure)
}

func TestAggregate_PreservesDiscoveryOrder(t *testing.T) {
	aggregator, artifactsDir, _ := newTestAggregator(t)

	// Names chosen so any sorting would reorder them.
	writeReport(t, artifactsDir, "edge-2", `{
		"testsuite": [
			{"name": "zeta", "tests": 1, "time": 0, "testcase": [
				{"classname": "z", "name": "b", "time": 0, "assertions": 0, "failure": null},
				{"classname": "z", "name": "a", "time": 0, "assertions": 0, "failure": null}
			]},
			{"name": "alpha", "tests": 0, "time": 0, "testcase": []}
		]
	}`)
	writeReport(t, artifactsDir, "edge-1", `{
		"testsuite": [
			{"name": "midway", "tests": 0, "time": 0, "testcase": []}
		]
	}`)

	// edge-2 is listed first, so its suites must come first.
	summary, err := aggregator.Aggregate([]string{"edge-2", "edge-1"}, runTimestamp)
	require.NoError(t, err)

	doc := readResults(t, summary.OutputPath)
	require.Len(t, doc.Suites, 3)
	assert.Equal(t, "zeta", doc.Suites[0].Name)
	assert.Equal(t, "alpha", doc.Suites[1].Name)
	assert.Equal(t, "midway", doc.Suites[2].Name)

	cases := doc.Suites[0].Results.Cases
	require.Len(t, cases, 2)
	assert.Equal(t, "z-b", cases[0].Name)
	assert.Equal(t, "z-a", cases[1].Name)
}

func TestAggregate_SumsCaseTimesNotSuiteTimes(t *testing.T) {
	aggregator, artifactsDir, _ := newTestAggregator(t)

	// Suite-level time is wildly wrong on purpose.
	writeReport(t, artifactsDir, "edge-1", `{
		"testsuite": [{
			"name": "timing", "tests": 2, "time": 1000.0,
			"testcase": [
				{"classname": "t", "name": "fast", "time": 1.25, "assertions": 1, "failure": null},
				{"classname": "t", "name": "slow", "time": 2.5, "assertions": 1, "failure": null}
			]
		}]
	}`)

	summary, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.NoError(t, err)

	assert.InDelta(t, 3.75, summary.ElapsedSeconds, 1e-9)

	doc := readResults(t, summary.OutputPath)
	assert.Equal(t, "3.75", doc.Time)
	assert.Equal(t, "3.75", doc.Suites[0].Time)
	assert.Equal(t, "1.25", doc.Suites[0].Results.Cases[0].Time)
	assert.Equal(t, "2.50", doc.Suites[0].Results.Cases[1].Time)
}

func TestAggregate_EmptyClusterList(t *testing.T) {
	aggregator, _, _ := newTestAggregator(t)

	summary, err := aggregator.Aggregate(nil, runTimestamp)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Failures)
	assert.True(t, summary.Succeeded())

	doc := readResults(t, summary.OutputPath)
	assert.Equal(t, 0, doc.Total)
	assert.Equal(t, 0, doc.Failures)
	assert.Equal(t, 0, doc.Errors)
	assert.Equal(t, "0.00", doc.Time)
	assert.Empty(t, doc.Suites)
}

func TestAggregate_MissingReportIsFatal(t *testing.T) {
	aggregator, artifactsDir, resultsDir := newTestAggregator(t)

	writeReport(t, artifactsDir, "edge-1", `{"testsuite": []}`)

	_, err := aggregator.Aggregate([]string{"edge-1", "edge-2"}, runTimestamp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edge-2")
	assert.Contains(t, err.Error(), ReportFileName("edge-2", runTimestamp))

	// No partial output may exist.
	_, statErr := os.Stat(filepath.Join(resultsDir, ResultsFileName(runTimestamp)))
	assert.True(t, os.IsNotExist(statErr), "no output file may be written on a fatal error")
}

func TestAggregate_MalformedJSONIsFatal(t *testing.T) {
	aggregator, artifactsDir, resultsDir := newTestAggregator(t)

	writeReport(t, artifactsDir, "edge-1", `{"testsuite": [`)

	_, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edge-1")
	assert.Contains(t, err.Error(), "not valid JSON")

	_, statErr := os.Stat(filepath.Join(resultsDir, ResultsFileName(runTimestamp)))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAggregate_MissingFailureFieldsBecomeEmpty(t *testing.T) {
	aggregator, artifactsDir, _ := newTestAggregator(t)

	writeReport(t, artifactsDir, "edge-1", `{
		"testsuite": [{
			"name": "drifted", "tests": 1, "time": 0,
			"testcase": [
				{"classname": "d", "name": "no-text", "time": 0, "assertions": 0,
					"failure": {"message": "timed out"}}
			]
		}]
	}`)

	summary, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failures)

	doc := readResults(t, summary.OutputPath)
	failure := doc.Suites[0].Results.Cases[0].Failure
	require.NotNil(t, failure)
	assert.Equal(t, "timed out: ", failure.Message)
}

func TestAggregate_EmptySuiteRendersSuccess(t *testing.T) {
	aggregator, artifactsDir, _ := newTestAggregator(t)

	writeReport(t, artifactsDir, "edge-1", `{
		"testsuite": [{"name": "empty", "tests": 0, "time": 0, "testcase": []}]
	}`)

	summary, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)

	doc := readResults(t, summary.OutputPath)
	require.Len(t, doc.Suites, 1)
	assert.Equal(t, "Success", doc.Suites[0].Result)
	assert.Empty(t, doc.Suites[0].Results.Cases)
}

func TestAggregate_EscapesMarkupInNames(t *testing.T) {
	aggregator, artifactsDir, _ := newTestAggregator(t)

	writeReport(t, artifactsDir, "edge-1", `{
		"testsuite": [{
			"name": "suite <&> \"quoted\"", "tests": 1, "time": 0,
			"testcase": [
				{"classname": "a<b", "name": "c&d", "time": 0, "assertions": 0,
					"failure": {"message": "expected <3 pods", "text": "got >5 & \"weird\""}}
			]
		}]
	}`)

	summary, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.NoError(t, err)

	raw, err := os.ReadFile(summary.OutputPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `name="suite <&>`, "attribute content must be escaped")

	// Round-tripping through the XML parser must restore the originals.
	doc := readResults(t, summary.OutputPath)
	assert.Equal(t, `suite <&> "quoted"`, doc.Suites[0].Name)
	testCase := doc.Suites[0].Results.Cases[0]
	assert.Equal(t, "a<b-c&d", testCase.Name)
	assert.Equal(t, `expected <3 pods: got >5 & "weird"`, testCase.Failure.Message)
}

func TestAggregate_RefusesToOverwriteExistingOutput(t *testing.T) {
	aggregator, artifactsDir, resultsDir := newTestAggregator(t)

	writeReport(t, artifactsDir, "edge-1", `{"testsuite": []}`)

	_, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.NoError(t, err)

	_, err = aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ResultsFileName(runTimestamp))

	// The original file is untouched.
	doc := readResults(t, filepath.Join(resultsDir, ResultsFileName(runTimestamp)))
	assert.Equal(t, 0, doc.Total)
}

func TestAggregate_RoundTripReproducesCounters(t *testing.T) {
	aggregator, artifactsDir, _ := newTestAggregator(t)

	original := `{
		"testsuite": [{
			"name": "roundtrip", "tests": 2, "time": 3.0,
			"testcase": [
				{"classname": "r", "name": "pass", "time": 1.5, "assertions": 2, "failure": null},
				{"classname": "r", "name": "fail", "time": 1.5, "assertions": 1,
					"failure": {"message": "m", "text": "t"}}
			]
		}]
	}`
	writeReport(t, artifactsDir, "edge-1", original)

	first, err := aggregator.Aggregate([]string{"edge-1"}, runTimestamp)
	require.NoError(t, err)

	// Feed the same constituent data through a second aggregation pass.
	secondTimestamp := "20260823-110000"
	path := filepath.Join(artifactsDir, ReportFileName("edge-1", secondTimestamp))
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	second, err := aggregator.Aggregate([]string{"edge-1"}, secondTimestamp)
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Failures, second.Failures)
	assert.Equal(t, first.Errors, second.Errors)
	assert.InDelta(t, first.ElapsedSeconds, second.ElapsedSeconds, 1e-9)
}

func TestAggregate_OutputStartsWithXMLDeclaration(t *testing.T) {
	aggregator, _, _ := newTestAggregator(t)

	summary, err := aggregator.Aggregate(nil, runTimestamp)
	require.NoError(t, err)

	raw, err := os.ReadFile(summary.OutputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "<?xml version="))
	assert.Contains(t, string(raw), `<test-results name="fleetcheck-`+runTimestamp+`"`)
}
