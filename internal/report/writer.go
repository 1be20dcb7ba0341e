package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/stripecrawl/internal/model"
)

// Writer defines the interface for run report output.
type Writer interface {
	// Write outputs the summary of one run.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.RunSummary) (int, error)

	// WriteHistory outputs a list of past runs, newest first.
	WriteHistory(runs []*model.RunSummary) (int, error)
}

// MultiWriter writes to multiple Writers.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs the history to all configured Writers.
func (m *MultiWriter) WriteHistory(runs []*model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// stopReasonText returns a human-readable explanation of why a run ended.
func stopReasonText(r model.StopReason) string {
	// A Caser holds state, so each call gets its own.
	titleCaser := cases.Title(language.English)

	switch r {
	case model.StopBudget:
		return titleCaser.String(string(r)) + " reached"
	case model.StopExhausted:
		return titleCaser.String(string(r)) + " (no more links to follow)"
	case model.StopCancelled:
		return titleCaser.String(string(r)) + " (partial results)"
	default:
		return "Unfinished"
	}
}
