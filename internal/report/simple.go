package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/stripecrawl/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the derived figures (overshoot, throughput).
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "STRIPECRAWL RUN")

	fmt.Fprintf(&sb, "Seed:          %s\n", summary.Seed)
	fmt.Fprintf(&sb, "Workers:       %d\n", summary.Workers)
	fmt.Fprintf(&sb, "Link Budget:   %d\n", summary.MaxLinks)
	fmt.Fprintf(&sb, "Started:       %s\n", formatTime(summary.StartedAt))
	fmt.Fprintf(&sb, "Elapsed:       %s\n", summary.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(&sb, "Status:        %s\n", stopReasonText(summary.StopReason))
	sb.WriteString("\n")

	writeSection(&sb, "COUNTERS")
	fmt.Fprintf(&sb, "  PROCESSED:     %d\n", summary.Processed)
	fmt.Fprintf(&sb, "  FETCHED:       %d\n", summary.Fetched)
	fmt.Fprintf(&sb, "  FETCH ERRORS:  %d\n", summary.FetchErrors)
	fmt.Fprintf(&sb, "  VISITED:       %d\n", summary.Visited)
	fmt.Fprintf(&sb, "  ENQUEUED:      %d\n", summary.Enqueued)
	if w.verbose {
		fmt.Fprintf(&sb, "  OVERSHOOT:     %d\n", summary.Overshoot())
		if secs := summary.Elapsed().Seconds(); secs > 0 {
			fmt.Fprintf(&sb, "  PAGES/SEC:     %.1f\n", float64(summary.Processed)/secs)
		}
	}
	sb.WriteString("\n")

	if t := summary.Timings; t != nil {
		writeSection(&sb, "PHASE TIMINGS (summed across workers)")
		fmt.Fprintf(&sb, "  FETCH:    %s\n", t.Fetch.Round(time.Millisecond))
		fmt.Fprintf(&sb, "  EXTRACT:  %s\n", t.Extract.Round(time.Millisecond))
		fmt.Fprintf(&sb, "  DEDUP:    %s\n", t.Dedup.Round(time.Millisecond))
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory outputs past runs as an aligned table.
func (w *SimpleWriter) WriteHistory(runs []*model.RunSummary) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "STRIPECRAWL HISTORY")

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%-5s %-20s %-8s %-10s %-11s %s\n", "ID", "STARTED", "WORKERS", "PROCESSED", "REASON", "SEED")
	for _, r := range runs {
		reason := string(r.StopReason)
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(&sb, "%-5d %-20s %-8d %-10d %-11s %s\n",
			r.ID, formatTime(r.StartedAt), r.Workers, r.Processed, reason, r.Seed)
	}

	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	pad := max((ruleWidth-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
