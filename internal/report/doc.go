// Package report implements the result aggregation core of fleetcheck.
//
// The per-cluster test runner deposits one JSON report per edge cluster in
// the artifacts directory, named {cluster}-{runTimestamp}.json. The
// aggregator reads every report in cluster order, flattens the nested
// suite/case structure, computes the aggregate counters and timings, and
// writes a single NUnit-style XML document consumable by standard CI report
// ingesters.
//
// # Counting rules
//
// The aggregate total counts the test cases actually present in each suite;
// a suite's self-reported "tests" value is retained for display but never
// trusted for counting. A suite fails if and only if at least one of its
// cases carries a failure. The errors, not-run, inconclusive, ignored and
// skipped counters exist for schema compatibility and are never populated by
// the KUTTL runner.
//
// # Timing precision
//
// Elapsed time is accumulated across all cases in float64 (double precision)
// and rendered once, at XML marshal time, with fixed two-decimal formatting.
// No intermediate rounding takes place.
//
// # Failure semantics
//
// A missing or unparseable report file aborts aggregation before any output
// is written: silently skipping a cluster would understate failures. Test
// failures inside a report are data, not errors; they are folded into the
// counters and surfaced through the summary's failure count.
package report
