package model

import (
	"errors"
	"time"
)

// StopReason records why a crawl run ended.
type StopReason string

const (
	// StopBudget means the processed count reached the link budget.
	StopBudget StopReason = "budget"

	// StopExhausted means the frontier drained with every worker idle
	// before the budget was reached.
	StopExhausted StopReason = "exhausted"

	// StopCancelled means the run's context was cancelled.
	StopCancelled StopReason = "cancelled"
)

// ErrUnknownStopReason is returned by ParseStopReason for unrecognized input.
var ErrUnknownStopReason = errors.New("unknown stop reason")

// ParseStopReason converts a stored string back into a StopReason.
func ParseStopReason(s string) (StopReason, error) {
	switch r := StopReason(s); r {
	case StopBudget, StopExhausted, StopCancelled:
		return r, nil
	default:
		return "", ErrUnknownStopReason
	}
}

// PhaseTimings holds the cumulative time all workers spent in each phase
// of URL processing. Values are summed across workers, so with more than
// one worker their total can exceed the run's wall-clock time.
type PhaseTimings struct {
	// Fetch is time spent in the Fetcher.
	Fetch time.Duration `json:"fetch"`

	// Extract is time spent in the LinkExtractor.
	Extract time.Duration `json:"extract"`

	// Dedup is time spent checking and inserting into the visited set
	// and pushing onto the frontier.
	Dedup time.Duration `json:"dedup"`
}

// Total returns the sum of all phases.
func (p PhaseTimings) Total() time.Duration {
	return p.Fetch + p.Extract + p.Dedup
}

// RunSummary is the outcome of one crawl run.
// It is what reports render, what the metrics CSV records, and what the
// database stores as run history.
type RunSummary struct {
	// ID is the database identifier; zero when the run was not saved.
	ID int64 `json:"id,omitempty"`

	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// Workers is the size of the worker pool.
	Workers int `json:"workers"`

	// MaxLinks is the configured processing budget.
	MaxLinks int `json:"max_links"`

	// Processed is the number of URLs taken from the frontier and handled,
	// including ones whose fetch failed. It may exceed MaxLinks by at most
	// Workers-1.
	Processed int64 `json:"processed"`

	// Fetched is the number of successful fetches.
	Fetched int64 `json:"fetched"`

	// FetchErrors is the number of failed fetches.
	FetchErrors int64 `json:"fetch_errors"`

	// Visited is the number of distinct URLs admitted to the visited set,
	// including the seed.
	Visited int `json:"visited"`

	// Enqueued is the number of URLs pushed to the frontier, including the seed.
	Enqueued int64 `json:"enqueued"`

	// StopReason explains why the run ended.
	StopReason StopReason `json:"stop_reason"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last worker exited.
	FinishedAt time.Time `json:"finished_at"`

	// Timings is present only when timing collection was enabled.
	Timings *PhaseTimings `json:"timings,omitempty"`
}

// Elapsed returns the wall-clock duration of the run.
func (r *RunSummary) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Overshoot returns how far Processed went past MaxLinks, or zero.
func (r *RunSummary) Overshoot() int64 {
	if over := r.Processed - int64(r.MaxLinks); over > 0 {
		return over
	}
	return 0
}
