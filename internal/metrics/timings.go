package metrics

import (
	"sync/atomic"
	"time"

	"github.com/nao1215/stripecrawl/internal/model"
)

// Phase identifies one step of URL processing.
type Phase int

const (
	// PhaseFetch covers the Fetcher call.
	PhaseFetch Phase = iota
	// PhaseExtract covers the LinkExtractor call.
	PhaseExtract
	// PhaseDedup covers visited-set checks and frontier pushes.
	PhaseDedup

	phaseCount
)

// Timings accumulates time per phase across all workers.
// A nil *Timings is valid and records nothing.
type Timings struct {
	nanos [phaseCount]atomic.Int64
}

// NewTimings creates an empty collector.
func NewTimings() *Timings {
	return &Timings{}
}

// Observe adds d to phase p.
func (t *Timings) Observe(p Phase, d time.Duration) {
	if t == nil || p < 0 || p >= phaseCount {
		return
	}
	t.nanos[p].Add(int64(d))
}

// Start begins timing phase p and returns the function that stops it.
//
//	defer timings.Start(metrics.PhaseFetch)()
func (t *Timings) Start(p Phase) func() {
	if t == nil {
		return func() {}
	}
	begin := time.Now()
	return func() {
		t.Observe(p, time.Since(begin))
	}
}

// Snapshot returns the accumulated values, or nil for a nil collector.
func (t *Timings) Snapshot() *model.PhaseTimings {
	if t == nil {
		return nil
	}
	return &model.PhaseTimings{
		Fetch:   time.Duration(t.nanos[PhaseFetch].Load()),
		Extract: time.Duration(t.nanos[PhaseExtract].Load()),
		Dedup:   time.Duration(t.nanos[PhaseDedup].Load()),
	}
}
