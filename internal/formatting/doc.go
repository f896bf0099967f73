// Package formatting renders run results for the terminal.
//
// It produces the per-step duration table and the aggregate test summary
// shown at the end of a run.
package formatting
