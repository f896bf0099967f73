// Package pipeline carries run identity and drives the ordered steps of a
// harness run.
//
// Every run gets a RunContext holding a unique run ID and the run timestamp
// that names all artifact and result files. The Pipeline executes named
// steps in order, timing each one, and runs registered cleanup steps even
// when an earlier step failed.
package pipeline
