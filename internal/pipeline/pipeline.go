package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"fleetcheck/pkg/logging"
)

// StepFunc performs one unit of pipeline work.
type StepFunc func(ctx context.Context, run *RunContext) error

type step struct {
	name string
	fn   StepFunc
}

// StepResult records the outcome and duration of one executed step.
type StepResult struct {
	// Name is the step name as registered
	Name string
	// Duration is the wall-clock time the step took
	Duration time.Duration
	// Err is nil if the step succeeded
	Err error
}

// Pipeline executes registered steps in order. Cleanup steps run after the
// main steps regardless of earlier failures, so provisioned infrastructure
// is torn down even when a run aborts.
type Pipeline struct {
	steps    []step
	cleanups []step
	quiet    bool
}

// New creates an empty pipeline. When quiet is set no progress spinner is
// shown; step results are still logged.
func New(quiet bool) *Pipeline {
	return &Pipeline{quiet: quiet}
}

// Add registers a step. Steps execute in registration order.
func (p *Pipeline) Add(name string, fn StepFunc) {
	p.steps = append(p.steps, step{name: name, fn: fn})
}

// AddCleanup registers a step that runs after all main steps, even when one
// of them failed. Cleanup steps execute in registration order.
func (p *Pipeline) AddCleanup(name string, fn StepFunc) {
	p.cleanups = append(p.cleanups, step{name: name, fn: fn})
}

// Run executes the pipeline. It returns the results of every executed step
// and the error of the first failed main step, if any. A failed main step
// skips the remaining main steps but not the cleanup steps; a failed cleanup
// step is logged and does not mask the main error.
func (p *Pipeline) Run(ctx context.Context, run *RunContext) ([]StepResult, error) {
	results := make([]StepResult, 0, len(p.steps)+len(p.cleanups))

	var runErr error
	for _, s := range p.steps {
		result := p.execute(ctx, run, s)
		results = append(results, result)
		if result.Err != nil {
			runErr = fmt.Errorf("step %s failed: %w", s.name, result.Err)
			break
		}
	}

	for _, s := range p.cleanups {
		result := p.execute(ctx, run, s)
		results = append(results, result)
		if result.Err != nil {
			logging.Warn("Pipeline", "cleanup step %s failed: %v", s.name, result.Err)
			if runErr == nil {
				runErr = fmt.Errorf("cleanup step %s failed: %w", s.name, result.Err)
			}
		}
	}

	return results, runErr
}

func (p *Pipeline) execute(ctx context.Context, run *RunContext, s step) StepResult {
	logging.Debug("Pipeline", "starting step %s (run %s)", s.name, run.ID)

	var sp *spinner.Spinner
	if !p.quiet {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = fmt.Sprintf(" %s...", s.name)
		sp.Start()
	}

	started := time.Now()
	err := s.fn(ctx, run)
	elapsed := time.Since(started)

	if sp != nil {
		if err != nil {
			sp.FinalMSG = text.FgRed.Sprintf("%s failed", s.name) + "\n"
		}
		sp.Stop()
	}

	if err != nil {
		logging.Error("Pipeline", err, "step %s failed after %s", s.name, elapsed.Round(time.Millisecond))
	} else {
		logging.Info("Pipeline", "step %s completed in %s", s.name, elapsed.Round(time.Millisecond))
	}

	return StepResult{Name: s.name, Duration: elapsed, Err: err}
}
