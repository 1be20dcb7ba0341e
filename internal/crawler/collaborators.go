package crawler

import "context"

// Fetcher retrieves the raw content of a URL.
// Implementations must bound every call with a timeout and return an
// error rather than block indefinitely. Errors are never fatal to a crawl.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LinkExtractor returns the absolute URLs in content that pass its filter.
// pageURL is the address content was fetched from. Malformed content
// yields an empty slice, never a panic or error.
type LinkExtractor interface {
	Extract(pageURL string, content []byte) []string
}

// ArtifactSink persists crawl outputs. It is optional; the engine works
// the same with the no-op sink. Implementations must be safe for
// concurrent use because every worker writes to the same sink.
type ArtifactSink interface {
	// Write stores the fetched content of url.
	Write(ctx context.Context, url string, content []byte) error

	// WriteLinks stores the links extracted from url.
	WriteLinks(ctx context.Context, url string, links []string) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// ExtractorFunc adapts a function to the LinkExtractor interface.
type ExtractorFunc func(pageURL string, content []byte) []string

// Extract calls f.
func (f ExtractorFunc) Extract(pageURL string, content []byte) []string {
	return f(pageURL, content)
}
