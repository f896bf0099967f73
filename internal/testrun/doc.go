// Package testrun executes the declarative assertion suites against every
// edge cluster and watches for the resulting report files.
//
// Each cluster gets its own kuttl invocation producing one JSON report in
// the artifacts directory. A failing suite marks the cluster's outcome but
// never aborts the batch; the merged report is the source of truth for
// pass/fail accounting.
package testrun
