package crawler

import (
	"bytes"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// SelectorExtractor finds links inside the parts of a document matched by
// a CSS selector, e.g. "#bodyContent" to skip navigation chrome.
type SelectorExtractor struct {
	scope           string
	filter          LinkFilter
	resolveRelative bool
}

// NewSelectorExtractor creates a SelectorExtractor restricted to scope.
// An empty scope searches the whole document.
func NewSelectorExtractor(scope string, opts ...ExtractorOption) *SelectorExtractor {
	o := applyExtractorOptions(opts)
	return &SelectorExtractor{
		scope:           scope,
		filter:          o.filter,
		resolveRelative: o.resolveRelative,
	}
}

// Extract returns the filtered, de-duplicated links under the scope in document order.
func (x *SelectorExtractor) Extract(pageURL string, content []byte) []string {
	if len(content) == 0 {
		return []string{}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return []string{}
	}

	base, _ := url.Parse(pageURL) //nolint:errcheck // nil base disables resolution
	c := newLinkCollector(base, &x.filter, x.resolveRelative)

	root := doc.Selection
	if x.scope != "" {
		root = doc.Find(x.scope)
	}

	root.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			c.add(href)
		}
	})

	return c.links
}
