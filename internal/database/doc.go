// Package database provides SQLite-based run history for stripecrawl.
//
// CrawlDB stores:
//   - one row per crawl run with its final summary
//   - the pages each run fetched, identified by a SHA3-256 content hash
//   - the links found on those pages
//
// A RunRecorder, obtained from BeginRun, is handed to the crawl engine as
// an artifact sink so workers record pages while the crawl runs.
//
// SQLite is accessed through modernc.org/sqlite, which needs no cgo.
package database
