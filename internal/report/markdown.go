package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/stripecrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing and
// documentation.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + summary.Seed + "`"},
			{"Started", formatTime(summary.StartedAt)},
			{"Elapsed", summary.Elapsed().Round(time.Millisecond).String()},
			{"Workers", strconv.Itoa(summary.Workers)},
			{"Link Budget", strconv.Itoa(summary.MaxLinks)},
			{"Status", stopReasonText(summary.StopReason)},
		},
	})
	md.PlainText("")

	md.H2("Counters")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Processed", strconv.FormatInt(summary.Processed, 10)},
			{"Fetched", strconv.FormatInt(summary.Fetched, 10)},
			{"Fetch Errors", strconv.FormatInt(summary.FetchErrors, 10)},
			{"Visited", strconv.Itoa(summary.Visited)},
			{"Enqueued", strconv.FormatInt(summary.Enqueued, 10)},
			{"Overshoot", strconv.FormatInt(summary.Overshoot(), 10)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)
	w.writeTimings(md, summary.Timings)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeAlert calls out runs whose results are partial or mostly failed.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	switch {
	case summary.StopReason == model.StopCancelled:
		md.Warningf("The run was cancelled after %d of %d links; results are partial.",
			summary.Processed, summary.MaxLinks)
	case summary.Processed > 0 && summary.FetchErrors*2 > summary.Processed:
		md.Cautionf("%d of %d fetches failed.", summary.FetchErrors, summary.Processed)
	case summary.StopReason == model.StopExhausted:
		md.Note("The crawl ran out of links before reaching the budget.")
	default:
		md.Tip("The crawl reached its link budget.")
	}
	md.PlainText("")
}

// writeTimings writes the phase table and a mermaid pie chart of where
// worker time went.
func (w *MarkdownWriter) writeTimings(md *markdown.Markdown, t *model.PhaseTimings) {
	if t == nil {
		return
	}

	md.H2("Phase Timings")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Phase", "Time (summed across workers)"},
		Rows: [][]string{
			{"Fetch", t.Fetch.Round(time.Millisecond).String()},
			{"Extract", t.Extract.Round(time.Millisecond).String()},
			{"Dedup", t.Dedup.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	if t.Total() <= 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Worker time by phase (ms)"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Fetch", uint64(t.Fetch.Milliseconds()))     //nolint:gosec // durations are non-negative
	chart.LabelAndIntValue("Extract", uint64(t.Extract.Milliseconds())) //nolint:gosec // durations are non-negative
	chart.LabelAndIntValue("Dedup", uint64(t.Dedup.Milliseconds()))     //nolint:gosec // durations are non-negative

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteHistory outputs past runs as a Markdown table.
func (w *MarkdownWriter) WriteHistory(runs []*model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			formatTime(r.StartedAt),
			strconv.Itoa(r.Workers),
			strconv.FormatInt(r.Processed, 10),
			stopReasonText(r.StopReason),
			truncateString(r.Seed, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Workers", "Processed", "Status", "Seed"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [stripecrawl](https://github.com/nao1215/stripecrawl)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
