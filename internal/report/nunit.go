package report

import (
	"encoding/xml"
	"strconv"
)

// The types below reproduce the NUnit-style schema consumed by CI report
// ingesters. Field names, casing and the attribute set are a compatibility
// contract; do not rename or reorder them.

// TestResults is the root element of the merged report.
type TestResults struct {
	XMLName      xml.Name    `xml:"test-results"`
	Name         string      `xml:"name,attr"`
	Total        int         `xml:"total,attr"`
	Errors       int         `xml:"errors,attr"`
	Failures     int         `xml:"failures,attr"`
	NotRun       int         `xml:"not-run,attr"`
	Inconclusive int         `xml:"inconclusive,attr"`
	Ignored      int         `xml:"ignored,attr"`
	Skipped      int         `xml:"skipped,attr"`
	Time         string      `xml:"time,attr"`
	Suites       []SuiteNode `xml:"test-suite"`
}

// SuiteNode is one rendered test suite.
type SuiteNode struct {
	Type     string      `xml:"type,attr"`
	Name     string      `xml:"name,attr"`
	Executed string      `xml:"executed,attr"`
	Result   string      `xml:"result,attr"`
	Success  string      `xml:"success,attr"`
	Time     string      `xml:"time,attr"`
	Results  ResultsNode `xml:"results"`
}

// ResultsNode wraps the cases of a suite.
type ResultsNode struct {
	Cases []CaseNode `xml:"test-case"`
}

// CaseNode is one rendered test case.
type CaseNode struct {
	Name     string       `xml:"name,attr"`
	Executed string       `xml:"executed,attr"`
	Result   string       `xml:"result,attr"`
	Success  string       `xml:"success,attr"`
	Time     string       `xml:"time,attr"`
	Asserts  int          `xml:"asserts,attr"`
	Failure  *FailureNode `xml:"failure,omitempty"`
}

// FailureNode carries the joined failure message of a failed case.
type FailureNode struct {
	Message string `xml:"message"`
}

const (
	suiteType     = "KUTTL"
	resultSuccess = "Success"
	resultFailure = "Failure"
	boolTrue      = "True"
	boolFalse     = "False"
)

// formatSeconds renders an elapsed-seconds value with the fixed two-decimal
// precision downstream consumers expect. Rounding happens only here, at
// render time.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64)
}

// outcome maps a failure condition to the result/success attribute pair.
func outcome(failed bool) (result, success string) {
	if failed {
		return resultFailure, boolFalse
	}
	return resultSuccess, boolTrue
}

// Marshal serializes the document with the XML declaration header and
// two-space indentation. encoding/xml guarantees well-formedness and entity
// escaping for all attribute and character content.
func (d *TestResults) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, []byte(xml.Header)...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
