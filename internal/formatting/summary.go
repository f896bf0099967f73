package formatting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"fleetcheck/internal/pipeline"
	"fleetcheck/internal/report"
)

// createTable creates a table with the standard styling.
func createTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderSteps writes the per-step duration table of a run.
func RenderSteps(out io.Writer, results []pipeline.StepResult) {
	if len(results) == 0 {
		return
	}

	t := createTable(out)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("STEP"),
		text.FgHiCyan.Sprint("DURATION"),
		text.FgHiCyan.Sprint("STATUS"),
	})

	for _, result := range results {
		status := text.FgGreen.Sprint("ok")
		if result.Err != nil {
			status = text.FgRed.Sprint("failed")
		}
		t.AppendRow(table.Row{
			result.Name,
			result.Duration.Round(time.Millisecond).String(),
			status,
		})
	}

	t.Render()
}

// RenderSummary writes the aggregate test summary of a run.
func RenderSummary(out io.Writer, summary *report.Summary) {
	t := createTable(out)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("TESTS"),
		text.FgHiCyan.Sprint("FAILURES"),
		text.FgHiCyan.Sprint("ERRORS"),
		text.FgHiCyan.Sprint("TIME"),
	})

	failures := fmt.Sprintf("%d", summary.Failures)
	if summary.Failures > 0 {
		failures = text.FgRed.Sprint(failures)
	}

	t.AppendRow(table.Row{
		summary.Total,
		failures,
		summary.Errors,
		fmt.Sprintf("%.2fs", summary.ElapsedSeconds),
	})
	t.Render()

	if summary.Succeeded() {
		fmt.Fprintln(out, text.FgGreen.Sprint("All tests passed"))
	} else {
		fmt.Fprintln(out, text.FgRed.Sprintf("%d test(s) failed", summary.Failures))
	}
	fmt.Fprintf(out, "Report written to %s\n", summary.OutputPath)
}
