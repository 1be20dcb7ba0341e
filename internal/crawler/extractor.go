package crawler

import (
	"bytes"
	"net/url"

	"golang.org/x/net/html"
)

// HTMLExtractor finds <a href> links in an HTML document.
//
// The document is read as a token stream and no tree is built, so nesting
// depth is unbounded.
type HTMLExtractor struct {
	filter          LinkFilter
	resolveRelative bool
}

// ExtractorOption configures an HTMLExtractor or SelectorExtractor.
type ExtractorOption func(*extractorOptions)

type extractorOptions struct {
	filter          LinkFilter
	resolveRelative bool
}

// WithFilter sets the link filter applied to every candidate.
func WithFilter(f LinkFilter) ExtractorOption {
	return func(o *extractorOptions) {
		o.filter = f
	}
}

// WithResolveRelative makes relative hrefs resolve against the page URL.
// By default only absolute hrefs are kept.
func WithResolveRelative(resolve bool) ExtractorOption {
	return func(o *extractorOptions) {
		o.resolveRelative = resolve
	}
}

func applyExtractorOptions(opts []ExtractorOption) extractorOptions {
	var o extractorOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewHTMLExtractor creates an HTMLExtractor.
func NewHTMLExtractor(opts ...ExtractorOption) *HTMLExtractor {
	o := applyExtractorOptions(opts)
	return &HTMLExtractor{
		filter:          o.filter,
		resolveRelative: o.resolveRelative,
	}
}

// Extract returns the filtered, de-duplicated links of content in document order.
func (x *HTMLExtractor) Extract(pageURL string, content []byte) []string {
	if len(content) == 0 {
		return []string{}
	}

	base, _ := url.Parse(pageURL) //nolint:errcheck // nil base disables resolution
	c := newLinkCollector(base, &x.filter, x.resolveRelative)

	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return c.links
		case html.StartTagToken, html.SelfClosingTagToken:
			token := z.Token()
			if token.Data != "a" {
				continue
			}
			for _, a := range token.Attr {
				if a.Key == "href" {
					c.add(a.Val)
					break
				}
			}
		}
	}
}

// linkCollector accumulates accepted links for one page.
type linkCollector struct {
	base    *url.URL
	filter  *LinkFilter
	resolve bool
	seen    map[string]struct{}
	links   []string
}

func newLinkCollector(base *url.URL, filter *LinkFilter, resolve bool) *linkCollector {
	return &linkCollector{
		base:    base,
		filter:  filter,
		resolve: resolve,
		seen:    make(map[string]struct{}),
		links:   []string{},
	}
}

func (c *linkCollector) add(href string) {
	link := resolveHref(c.base, href, c.resolve)
	if link == "" || !c.filter.Allow(link) {
		return
	}
	if _, dup := c.seen[link]; dup {
		return
	}
	c.seen[link] = struct{}{}
	c.links = append(c.links, link)
}
