// Package artifact persists what a crawl fetches.
//
// The types here satisfy crawler.ArtifactSink structurally:
//
//   - Nop discards everything and is the engine's default
//   - FileSink writes page bodies and a link list under an output directory
//   - Multi fans out to several sinks, e.g. files plus the run database
package artifact
