package report

import "fmt"

// ClusterReport is the JSON document the per-cluster test runner writes to
// the artifacts directory. The field names mirror the runner's output and
// must not be changed.
type ClusterReport struct {
	// Suites are the test suites in the order the runner emitted them
	Suites []TestSuite `json:"testsuite"`
}

// TestSuite is one suite inside a cluster report.
type TestSuite struct {
	// Name is the suite name, unique within the report
	Name string `json:"name"`
	// DeclaredTests is the case count as stated by the producer. It may
	// disagree with the actual case count and is retained for display only.
	DeclaredTests int `json:"tests"`
	// Elapsed is the suite-level elapsed time in seconds as reported by the
	// producer. Aggregate timing sums case times instead.
	Elapsed float64 `json:"time"`
	// Cases are the test cases in original order
	Cases []TestCase `json:"testcase"`
}

// TestCase is one assertion case inside a suite.
type TestCase struct {
	// ClassName is the case's class or group identifier
	ClassName string `json:"classname"`
	// Name is the case name
	Name string `json:"name"`
	// Elapsed is the case execution time in seconds
	Elapsed float64 `json:"time"`
	// Assertions is the number of assertions the case evaluated
	Assertions int `json:"assertions"`
	// Failure is nil for passing cases
	Failure *Failure `json:"failure"`
}

// QualifiedName combines class name and case name into the identifier used
// in the merged report.
func (c TestCase) QualifiedName() string {
	return fmt.Sprintf("%s-%s", c.ClassName, c.Name)
}

// Failure describes why a case failed. Either field may be absent in the
// input; absent fields are treated as empty strings.
type Failure struct {
	// Message is the short failure message
	Message string `json:"message"`
	// Text is the detailed failure output
	Text string `json:"text"`
}

// Render joins message and detail the way the merged report displays them.
func (f Failure) Render() string {
	return fmt.Sprintf("%s: %s", f.Message, f.Text)
}
