package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/okian/compliance/internal/domain/scoring"
	"github.com/okian/compliance/internal/domain/types"
)

// FormatJSON writes v as indented JSON.
func FormatJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// FormatProjectsTable prints one row per project with its classification.
func FormatProjectsTable(out io.Writer, projects []types.ProjectResponse) error {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tSTACK\tLAST SCORE\tCLASS\tLAST EXECUTION")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, dash(p.Stack), formatScorePtr(p.LastScore), classLabel(p.LastScore), formatTimePtr(p.LastExecutionAt))
	}
	return w.Flush()
}

// FormatProjectDetail prints a single project as key/value lines.
func FormatProjectDetail(out io.Writer, p types.ProjectResponse) error {
	w := newTable(out)
	fmt.Fprintf(w, "ID:\t%s\n", p.ID)
	fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	fmt.Fprintf(w, "Description:\t%s\n", dash(p.Description))
	fmt.Fprintf(w, "Stack:\t%s\n", dash(p.Stack))
	fmt.Fprintf(w, "Last score:\t%s %s\n", formatScorePtr(p.LastScore), classLabel(p.LastScore))
	fmt.Fprintf(w, "Last execution:\t%s\n", formatTimePtr(p.LastExecutionAt))
	fmt.Fprintf(w, "Created:\t%s\n", formatTimePtr(p.CreatedAt))
	return w.Flush()
}

// FormatHistoryTable prints score history entries.
func FormatHistoryTable(out io.Writer, history []types.ScoreHistoryResponse) error {
	w := newTable(out)
	fmt.Fprintln(w, "RECORDED\tRUNNER\tSCORE\tCLASS\tPASSED")
	for _, h := range history {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\n",
			formatTimePtr(h.RecordedAt), h.RunnerType, formatScore(h.Score), scoring.Classify(h.Score).Label, h.Passed, h.Total)
	}
	return w.Flush()
}

// FormatTrendTable prints the per-runner trend.
func FormatTrendTable(out io.Writer, trend types.TrendResponse) error {
	w := newTable(out)
	fmt.Fprintln(w, "RUNNER\tFROM\tTO\tDELTA\tDELTA %\tDIRECTION\tSAMPLES")
	for _, r := range trend.Runners {
		fmt.Fprintf(w, "%s\t%s\t%s\t%+.2f\t%+.2f\t%s\t%d\n",
			r.RunnerType, formatScore(r.Trend.From), formatScore(r.Trend.To),
			r.Trend.DeltaScore, r.Trend.DeltaPercent, r.Trend.Direction, r.Samples)
	}
	return w.Flush()
}

// FormatExecutionsTable prints one row per execution.
func FormatExecutionsTable(out io.Writer, execs []types.ExecutionResponse) error {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tPROJECT\tENV\tSTARTED\tSCORE\tCLASS\tPASSED\tFAILED\tDURATION")
	for _, e := range execs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d/%d\t%d\t%s\n",
			e.ID, dash(e.ProjectName), dash(e.Environment), formatTime(e.StartedAt),
			formatScore(e.Score), scoring.Classify(e.Score).Label, e.Passed, e.Total, e.Failed, formatDuration(e.DurationMS))
	}
	return w.Flush()
}

// FormatExecutionDetail prints a single execution as key/value lines.
func FormatExecutionDetail(out io.Writer, e types.ExecutionResponse) error {
	w := newTable(out)
	fmt.Fprintf(w, "ID:\t%s\n", e.ID)
	fmt.Fprintf(w, "Project:\t%s (%s)\n", dash(e.ProjectName), e.ProjectID)
	fmt.Fprintf(w, "Environment:\t%s\n", dash(e.Environment))
	fmt.Fprintf(w, "Started:\t%s\n", formatTime(e.StartedAt))
	fmt.Fprintf(w, "Finished:\t%s\n", formatTimePtr(e.FinishedAt))
	fmt.Fprintf(w, "Score:\t%s %s\n", formatScore(e.Score), scoring.Classify(e.Score).Label)
	fmt.Fprintf(w, "Tests:\t%d total, %d passed, %d failed, %d errors, %d skipped\n", e.Total, e.Passed, e.Failed, e.Errors, e.Skipped)
	fmt.Fprintf(w, "Duration:\t%s\n", formatDuration(e.DurationMS))
	return w.Flush()
}

// FormatResultsTable prints test results. Details arrive already masked.
func FormatResultsTable(out io.Writer, results []types.TestResultResponse) error {
	w := newTable(out)
	fmt.Fprintln(w, "TYPE\tNAME\tSTATUS\tSEVERITY\tGROUP\tDURATION\tDETAILS")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Type, r.Name, r.Status, dash(r.Severity), dash(r.Group), formatDuration(r.DurationMS), dash(r.Detail))
	}
	return w.Flush()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatScorePtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatScore(*v)
}

func classLabel(v *float64) string {
	if c := scoring.ClassifyPtr(v); c != nil {
		return c.Label
	}
	return "-"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func formatDuration(ms float64) string {
	return time.Duration(ms * float64(time.Millisecond)).Round(time.Millisecond).String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
