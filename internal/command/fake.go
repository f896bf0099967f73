package command

import (
	"context"
	"strings"
	"sync"
)

// FakeCall records one invocation made against a FakeRunner.
type FakeCall struct {
	// Name is the tool that was invoked
	Name string
	// Args are the arguments it was invoked with
	Args []string
}

// String renders the call the way it would appear on a shell command line.
func (c FakeCall) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// FakeRunner is a Runner for tests. It records every call and replies with
// canned results keyed by a command-line prefix.
type FakeRunner struct {
	mu    sync.Mutex
	calls []FakeCall

	// Responses maps a command-line prefix (e.g. "k3d cluster create") to a
	// canned result. The first matching prefix wins; unmatched calls succeed
	// with empty output.
	Responses map[string]FakeResponse
}

// FakeResponse is a canned reply for a FakeRunner.
type FakeResponse struct {
	Result Result
	Err    error
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Responses: make(map[string]FakeResponse)}
}

// Run records the call and returns the canned response, if any.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	call := FakeCall{Name: name, Args: args}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	line := call.String()
	for prefix, response := range f.Responses {
		if strings.HasPrefix(line, prefix) {
			return response.Result, response.Err
		}
	}

	return Result{}, nil
}

// Calls returns a copy of all recorded invocations in order.
func (f *FakeRunner) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	calls := make([]FakeCall, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// CommandLines returns every recorded invocation rendered as a command line.
func (f *FakeRunner) CommandLines() []string {
	calls := f.Calls()

	lines := make([]string, 0, len(calls))
	for _, call := range calls {
		lines = append(lines, call.String())
	}
	return lines
}
