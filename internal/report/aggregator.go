package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fleetcheck/pkg/logging"
)

// ReportFileName returns the artifacts-directory file name the test runner
// uses for a cluster's JSON report.
func ReportFileName(cluster, runTimestamp string) string {
	return fmt.Sprintf("%s-%s.json", cluster, runTimestamp)
}

// ResultsFileName returns the file name of the merged XML report for a run.
func ResultsFileName(runTimestamp string) string {
	return fmt.Sprintf("results-%s.xml", runTimestamp)
}

// Summary is the outcome of one aggregation pass.
type Summary struct {
	// Total is the number of test cases actually present across all reports
	Total int
	// Failures is the number of cases with a failure across all reports
	Failures int
	// Errors mirrors the report's errors counter; the KUTTL runner never
	// populates it
	Errors int
	// ElapsedSeconds is the sum of all case times
	ElapsedSeconds float64
	// OutputPath is the written XML file
	OutputPath string
}

// Succeeded reports whether the run recorded no test failures.
func (s *Summary) Succeeded() bool {
	return s.Failures == 0 && s.Errors == 0
}

// Aggregator merges per-cluster JSON reports into one XML report.
type Aggregator struct {
	artifactsDir string
	resultsDir   string
}

// NewAggregator creates an aggregator reading reports from artifactsDir and
// writing the merged report to resultsDir.
func NewAggregator(artifactsDir, resultsDir string) *Aggregator {
	return &Aggregator{
		artifactsDir: artifactsDir,
		resultsDir:   resultsDir,
	}
}

// Aggregate reads the report of every named cluster, in input order, and
// writes the merged XML report for the run. A missing or malformed report is
// fatal and no output file is produced; test failures inside reports are
// data and only affect the summary counters.
func (a *Aggregator) Aggregate(clusters []string, runTimestamp string) (*Summary, error) {
	doc := &TestResults{
		Name: fmt.Sprintf("fleetcheck-%s", runTimestamp),
	}

	var totalElapsed float64

	for _, cluster := range clusters {
		path := filepath.Join(a.artifactsDir, ReportFileName(cluster, runTimestamp))

		clusterReport, err := readClusterReport(cluster, path)
		if err != nil {
			return nil, err
		}

		for _, suite := range clusterReport.Suites {
			node, suiteFailures, suiteElapsed := renderSuite(suite)
			doc.Suites = append(doc.Suites, node)

			doc.Total += len(suite.Cases)
			doc.Failures += suiteFailures
			totalElapsed += suiteElapsed
		}

		logging.Debug("Aggregator", "merged report for cluster %s (%d suites)",
			cluster, len(clusterReport.Suites))
	}

	doc.Time = formatSeconds(totalElapsed)

	outputPath, err := a.write(doc, runTimestamp)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Total:          doc.Total,
		Failures:       doc.Failures,
		Errors:         doc.Errors,
		ElapsedSeconds: totalElapsed,
		OutputPath:     outputPath,
	}

	logging.Info("Aggregator", "aggregated %d clusters: total=%d failures=%d errors=%d time=%s -> %s",
		len(clusters), summary.Total, summary.Failures, summary.Errors, doc.Time, outputPath)

	return summary, nil
}

// readClusterReport loads and decodes one cluster's JSON report. Both a
// missing file and malformed JSON are fatal for the run.
func readClusterReport(cluster, path string) (*ClusterReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report for cluster %s unreadable at %s: %w", cluster, path, err)
	}

	var clusterReport ClusterReport
	if err := json.Unmarshal(content, &clusterReport); err != nil {
		return nil, fmt.Errorf("report for cluster %s at %s is not valid JSON: %w", cluster, path, err)
	}

	return &clusterReport, nil
}

// renderSuite flattens one input suite into its XML node and returns the
// suite's failure count and the sum of its case times.
func renderSuite(suite TestSuite) (SuiteNode, int, float64) {
	var failures int
	var elapsed float64

	cases := make([]CaseNode, 0, len(suite.Cases))
	for _, testCase := range suite.Cases {
		failed := testCase.Failure != nil
		if failed {
			failures++
		}
		elapsed += testCase.Elapsed

		result, success := outcome(failed)
		node := CaseNode{
			Name:     testCase.QualifiedName(),
			Executed: boolTrue,
			Result:   result,
			Success:  success,
			Time:     formatSeconds(testCase.Elapsed),
			Asserts:  testCase.Assertions,
		}
		if failed {
			node.Failure = &FailureNode{Message: testCase.Failure.Render()}
		}

		cases = append(cases, node)
	}

	result, success := outcome(failures > 0)
	node := SuiteNode{
		Type:     suiteType,
		Name:     suite.Name,
		Executed: boolTrue,
		Result:   result,
		Success:  success,
		Time:     formatSeconds(elapsed),
		Results:  ResultsNode{Cases: cases},
	}

	return node, failures, elapsed
}

// write serializes the document and creates the output file. The file must
// not already exist: concurrent runs with the same timestamp would otherwise
// interleave writes.
func (a *Aggregator) write(doc *TestResults, runTimestamp string) (string, error) {
	if err := os.MkdirAll(a.resultsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory %s: %w", a.resultsDir, err)
	}

	data, err := doc.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to serialize merged report: %w", err)
	}

	path := filepath.Join(a.resultsDir, ResultsFileName(runTimestamp))

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create results file %s: %w", path, err)
	}

	_, writeErr := file.Write(data)
	closeErr := file.Close()
	if writeErr != nil {
		return "", fmt.Errorf("failed to write results file %s: %w", path, writeErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to close results file %s: %w", path, closeErr)
	}

	return path, nil
}
