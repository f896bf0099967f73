package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"fleetcheck/pkg/logging"
)

// Result holds the captured output of a completed external command.
type Result struct {
	// Stdout contains the standard output
	Stdout string
	// Stderr contains the standard error output
	Stderr string
}

// Runner executes external commands. Implementations must be safe for
// concurrent use by parallel test workers.
type Runner interface {
	// Run executes the named tool with the given arguments and waits for it
	// to finish. A non-zero exit status is returned as an error alongside
	// whatever output was captured.
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// execRunner implements Runner using os/exec.
type execRunner struct {
	debug bool
}

// NewRunner creates an exec-backed Runner.
func NewRunner(debug bool) Runner {
	return &execRunner{debug: debug}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if _, err := exec.LookPath(name); err != nil {
		return Result{}, fmt.Errorf("required tool %q not found in PATH: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.debug {
		logging.Debug("Command", "running: %s %s", name, strings.Join(args, " "))
	}

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("%s interrupted: %w", name, ctx.Err())
		}
		return result, fmt.Errorf("%s %s failed: %w (stderr: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return result, nil
}
