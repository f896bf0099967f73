package testrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"fleetcheck/pkg/logging"
)

// DefaultPollInterval is the fallback rescan interval when fsnotify is
// unavailable, and the safety rescan interval when it is.
const DefaultPollInterval = 2 * time.Second

// ReportWatcher blocks until a set of report files exists in the artifacts
// directory. It uses fsnotify where available and falls back to polling;
// even with fsnotify a periodic rescan covers events lost around watcher
// setup.
type ReportWatcher struct {
	dir          string
	pollInterval time.Duration
}

// NewReportWatcher creates a watcher for the given artifacts directory.
func NewReportWatcher(dir string) *ReportWatcher {
	return &ReportWatcher{dir: dir, pollInterval: DefaultPollInterval}
}

// Wait blocks until every named file exists in the watched directory or
// the context is done.
func (w *ReportWatcher) Wait(ctx context.Context, files []string) error {
	pending := make(map[string]struct{}, len(files))
	for _, f := range files {
		pending[f] = struct{}{}
	}

	if w.scan(pending) {
		return nil
	}

	// The test runner may not have created the directory yet.
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifacts directory %s: %w", w.dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("ReportWatcher", "fsnotify not available, polling instead: %v", err)
		return w.poll(ctx, pending)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		logging.Warn("ReportWatcher", "failed to watch %s, polling instead: %v", w.dir, err)
		return w.poll(ctx, pending)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.waitError(ctx, pending)
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if _, ok := pending[name]; !ok {
				continue
			}
			delete(pending, name)
			logging.Debug("ReportWatcher", "report %s arrived (%d outstanding)", name, len(pending))
			if len(pending) == 0 {
				return nil
			}
		case err := <-watcher.Errors:
			logging.Warn("ReportWatcher", "watch error: %v", err)
		case <-ticker.C:
			if w.scan(pending) {
				return nil
			}
		}
	}
}

// poll rescans the directory at the poll interval until all files exist.
func (w *ReportWatcher) poll(ctx context.Context, pending map[string]struct{}) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.waitError(ctx, pending)
		case <-ticker.C:
			if w.scan(pending) {
				return nil
			}
		}
	}
}

// scan removes every pending file that already exists and reports whether
// the pending set is now empty.
func (w *ReportWatcher) scan(pending map[string]struct{}) bool {
	for name := range pending {
		if _, err := os.Stat(filepath.Join(w.dir, name)); err == nil {
			delete(pending, name)
		}
	}
	return len(pending) == 0
}

func (w *ReportWatcher) waitError(ctx context.Context, pending map[string]struct{}) error {
	missing := make([]string, 0, len(pending))
	for name := range pending {
		missing = append(missing, name)
	}
	return fmt.Errorf("gave up waiting for %d report file(s) %v in %s: %w",
		len(missing), missing, w.dir, ctx.Err())
}
