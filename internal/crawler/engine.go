package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/stripecrawl/internal/artifact"
	"github.com/nao1215/stripecrawl/internal/metrics"
	"github.com/nao1215/stripecrawl/internal/model"
	"github.com/nao1215/stripecrawl/internal/queue"
	"github.com/nao1215/stripecrawl/internal/stripedset"
)

// Engine defaults.
const (
	// DefaultWorkers is the worker pool size.
	DefaultWorkers = 8

	// DefaultMaxLinks is the processing budget.
	DefaultMaxLinks = 500

	// DefaultInitialCapacity is the visited set's initial bucket and stripe count.
	DefaultInitialCapacity = 16
)

// poison is the frontier sentinel. A worker that pops it exits.
const poison = ""

// Engine runs one crawl: a fixed pool of workers sharing a frontier queue
// and a visited set until the link budget is spent, the frontier drains,
// or the context is cancelled.
//
// An Engine holds the state of a single run. Create a new one per crawl.
type Engine struct {
	fetcher   Fetcher
	extractor LinkExtractor
	sink      ArtifactSink
	logger    *slog.Logger
	timings   *metrics.Timings

	workers  int
	maxLinks int64
	capacity int

	frontier *queue.Blocking[string]
	visited  *stripedset.Set[string]

	// processed counts URLs handled, including failed fetches.
	processed   atomic.Int64
	fetched     atomic.Int64
	fetchErrors atomic.Int64
	enqueued    atomic.Int64

	// pending counts URLs pushed to the frontier whose processing has not
	// finished. Zero means the frontier is empty and no worker can push more.
	pending atomic.Int64

	ran      atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	reason   model.StopReason
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the worker pool size. Non-positive values are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxLinks sets the processing budget. Non-positive values are ignored.
func WithMaxLinks(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLinks = int64(n)
		}
	}
}

// WithInitialCapacity sets the visited set's initial bucket count, which is
// also its fixed stripe count. Non-positive values are ignored.
func WithInitialCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.capacity = n
		}
	}
}

// WithSink sets where fetched pages and their links are persisted.
func WithSink(sink ArtifactSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTimings enables per-phase timing collection into t.
func WithTimings(t *metrics.Timings) Option {
	return func(e *Engine) {
		e.timings = t
	}
}

// New creates an Engine that fetches with fetcher and finds links with extractor.
func New(fetcher Fetcher, extractor LinkExtractor, opts ...Option) *Engine {
	e := &Engine{
		fetcher:   fetcher,
		extractor: extractor,
		sink:      artifact.Nop{},
		workers:   DefaultWorkers,
		maxLinks:  DefaultMaxLinks,
		capacity:  DefaultInitialCapacity,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.frontier = queue.New[string]()
	e.visited = stripedset.NewStrings(e.capacity)

	return e
}

// Run crawls from seed and blocks until every worker has exited.
//
// The returned summary is non-nil whenever the crawl started, including
// when the context was cancelled; in that case the context's error is
// returned alongside it.
func (e *Engine) Run(ctx context.Context, seed string) (*model.RunSummary, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}
	if !e.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	summary := &model.RunSummary{
		Seed:      seed,
		Workers:   e.workers,
		MaxLinks:  int(e.maxLinks),
		StartedAt: time.Now(),
	}

	e.logger.Info("starting crawl",
		"seed", seed,
		"workers", e.workers,
		"max_links", e.maxLinks,
	)

	// Extracted links arrive normalized, so the seed is marked visited in
	// that form too. The summary keeps it as given.
	seedKey := Normalize(seed)
	if seedKey == "" {
		seedKey = seed
	}
	e.visited.Add(seedKey)
	e.enqueue(seed)

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			e.stop(model.StopCancelled)
		case <-done:
		}
	}()

	var g errgroup.Group
	for id := range e.workers {
		g.Go(func() error {
			e.work(ctx, e.logger.With("worker", id))
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors
	close(done)

	// Workers also leave on a done context without stopping the run. This
	// call settles the reason in that case and is a no-op otherwise.
	e.stop(model.StopCancelled)

	summary.FinishedAt = time.Now()
	summary.Processed = e.processed.Load()
	summary.Fetched = e.fetched.Load()
	summary.FetchErrors = e.fetchErrors.Load()
	summary.Enqueued = e.enqueued.Load()
	summary.Visited = e.visited.Len()
	summary.StopReason = e.reason
	summary.Timings = e.timings.Snapshot()

	e.logger.Info("crawl finished",
		"processed", summary.Processed,
		"visited", summary.Visited,
		"fetch_errors", summary.FetchErrors,
		"reason", summary.StopReason,
		"elapsed", summary.Elapsed(),
	)

	if summary.StopReason == model.StopCancelled {
		return summary, ctx.Err()
	}
	return summary, nil
}

// validateSeed checks that seed is a usable absolute URL.
func validateSeed(seed string) error {
	if seed == poison {
		return ErrEmptySeed
	}
	u, err := url.Parse(seed)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return ErrInvalidSeed
	}
	return nil
}

// work is one worker's loop.
func (e *Engine) work(ctx context.Context, logger *slog.Logger) {
	for {
		// Checked before Pop so a spent budget never waits on the frontier.
		if e.stopped.Load() || e.budgetSpent() || ctx.Err() != nil {
			return
		}

		pageURL := e.frontier.Pop()
		if pageURL == poison {
			return
		}

		e.process(ctx, logger, pageURL)
	}
}

// process handles one URL: fetch, extract, count, then dedup and enqueue
// its links.
func (e *Engine) process(ctx context.Context, logger *slog.Logger, pageURL string) {
	defer e.finish(ctx)

	links := e.fetchLinks(ctx, logger, pageURL)

	if n := e.processed.Add(1); n == e.maxLinks {
		logger.Info("link budget reached", "max_links", e.maxLinks)
		e.stopFor(ctx, model.StopBudget)
	}

	stopDedup := e.timings.Start(metrics.PhaseDedup)
	defer stopDedup()

	for _, link := range links {
		if e.budgetSpent() {
			return
		}
		if link == poison {
			continue
		}
		if e.visited.Add(link) {
			e.enqueue(link)
		}
	}
}

// fetchLinks fetches pageURL and returns its links. Failures are logged,
// counted and reported as no links.
func (e *Engine) fetchLinks(ctx context.Context, logger *slog.Logger, pageURL string) []string {
	stopFetch := e.timings.Start(metrics.PhaseFetch)
	content, err := e.fetcher.Fetch(ctx, pageURL)
	stopFetch()

	if err != nil {
		e.fetchErrors.Add(1)
		logger.Debug("fetch failed", "url", pageURL, "error", err)
		return nil
	}
	e.fetched.Add(1)

	stopExtract := e.timings.Start(metrics.PhaseExtract)
	links := e.extractor.Extract(pageURL, content)
	stopExtract()

	logger.Debug("page processed", "url", pageURL, "links", len(links))

	if err := e.sink.Write(ctx, pageURL, content); err != nil {
		logger.Warn("failed to persist page", "url", pageURL, "error", err)
	}
	if err := e.sink.WriteLinks(ctx, pageURL, links); err != nil {
		logger.Warn("failed to persist links", "url", pageURL, "error", err)
	}

	return links
}

// enqueue pushes a newly visited URL onto the frontier.
func (e *Engine) enqueue(pageURL string) {
	e.pending.Add(1)
	e.enqueued.Add(1)
	e.frontier.Push(pageURL)
}

// finish marks one dequeued URL as fully handled. The worker that drops
// pending to zero found the frontier exhausted.
func (e *Engine) finish(ctx context.Context) {
	if e.pending.Add(-1) == 0 {
		e.stopFor(ctx, model.StopExhausted)
	}
}

// budgetSpent reports whether the processing budget has been reached.
func (e *Engine) budgetSpent() bool {
	return e.processed.Load() >= e.maxLinks
}

// stopFor stops the run for reason, unless ctx is already done: fetches
// failing because of cancellation can exhaust the frontier or spend the
// budget before the context watcher runs.
func (e *Engine) stopFor(ctx context.Context, reason model.StopReason) {
	if ctx.Err() != nil {
		reason = model.StopCancelled
	}
	e.stop(reason)
}

// stop ends the run for reason. Only the first call has any effect: it
// pushes one poison value per worker so that every Pop, blocked or
// future, returns.
func (e *Engine) stop(reason model.StopReason) {
	e.stopOnce.Do(func() {
		e.reason = reason
		e.stopped.Store(true)
		for range e.workers {
			e.frontier.Push(poison)
		}
	})
}
