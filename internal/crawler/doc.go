// Package crawler runs concurrent, budget-bounded web crawls.
//
// # Architecture
//
// An Engine owns one crawl. A fixed pool of workers shares two structures:
//
//   - the frontier, a blocking FIFO of URLs waiting to be fetched
//   - the visited set, a lock-striped hash set of every URL ever enqueued
//
// A URL is pushed onto the frontier only by the caller whose visited.Add
// returned true, so every URL is fetched at most once.
//
// # Termination
//
// Workers block in Pop while the frontier is empty. The run ends in one of
// three ways, and each pushes one poison value per worker exactly once:
//
//   - the worker whose increment makes processed equal maxLinks (budget)
//   - the worker that drops the pending count to zero (exhausted)
//   - context cancellation (cancelled)
//
// Workers check the budget before popping, so processed ends in
// [maxLinks, maxLinks+workers-1] when enough URLs are reachable.
//
// # Collaborators
//
//   - Fetcher: HTTPFetcher, optionally through a SOCKS5 proxy
//   - LinkExtractor: HTMLExtractor or SelectorExtractor, both filtered by a LinkFilter
//   - ArtifactSink: optional persistence of pages and their links
//
// # Usage
//
//	engine := crawler.New(
//		crawler.NewHTTPFetcher(),
//		crawler.NewHTMLExtractor(),
//		crawler.WithWorkers(8),
//		crawler.WithMaxLinks(500),
//	)
//	summary, err := engine.Run(ctx, "https://en.wikipedia.org/wiki/Go")
package crawler
