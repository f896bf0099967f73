package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetcheck/internal/config"
)

// timestampLayout names all files a run produces. It sorts lexicographically
// in chronological order.
const timestampLayout = "20060102-150405"

// RunContext identifies one harness run and carries its shared state.
type RunContext struct {
	// ID is the unique identifier of this run
	ID string
	// Timestamp names the run's artifact and result files
	Timestamp string
	// StartedAt is the wall-clock start of the run
	StartedAt time.Time
	// Config is the effective harness configuration
	Config config.Config

	mu          sync.Mutex
	testsFailed bool
}

// NewRunContext creates the context for a new run.
func NewRunContext(cfg config.Config) *RunContext {
	now := time.Now()
	return &RunContext{
		ID:        uuid.New().String(),
		Timestamp: now.Format(timestampLayout),
		StartedAt: now,
		Config:    cfg,
	}
}

// MarkTestFailure records that at least one cluster produced failing tests.
// Safe for concurrent use by parallel test workers.
func (r *RunContext) MarkTestFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.testsFailed = true
}

// TestsFailed reports whether any cluster recorded failing tests.
func (r *RunContext) TestsFailed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.testsFailed
}
