package crawler

import (
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// staticExtensions are file extensions that never lead to more pages.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// DefaultSchemes are the URL schemes followed when a filter names none.
var DefaultSchemes = []string{"https"}

// LinkFilter decides which discovered links are worth enqueuing.
// The zero value accepts https links only.
type LinkFilter struct {
	// Schemes lists accepted URL schemes, compared case-insensitively.
	// Empty means DefaultSchemes.
	Schemes []string

	// DomainContains, when set, must be a substring of the link's host.
	DomainContains string

	// IgnorePatterns are path globs to skip (e.g., "/admin/*", "*.pdf").
	IgnorePatterns []string

	// FollowPatterns, when set, restrict links to paths matching at least one glob.
	FollowPatterns []string

	// SkipStaticAssets drops links to images, stylesheets, scripts, archives and documents.
	SkipStaticAssets bool
}

// Normalize returns the canonical form of rawURL used for deduplication:
// the fragment is removed and scheme and host are lower-cased.
// It returns "" when rawURL cannot be parsed.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Allow reports whether link passes the filter. link must be absolute.
func (f *LinkFilter) Allow(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}

	schemes := f.Schemes
	if len(schemes) == 0 {
		schemes = DefaultSchemes
	}
	if !slices.ContainsFunc(schemes, func(s string) bool { return strings.EqualFold(s, u.Scheme) }) {
		return false
	}

	if f.DomainContains != "" && !strings.Contains(strings.ToLower(u.Host), strings.ToLower(f.DomainContains)) {
		return false
	}

	p := u.Path
	if p == "" {
		p = "/"
	}

	if f.SkipStaticAssets && staticExtensions[strings.ToLower(path.Ext(p))] {
		return false
	}

	for _, pattern := range f.IgnorePatterns {
		if matchPattern(pattern, p) {
			return false
		}
	}

	if len(f.FollowPatterns) == 0 {
		return true
	}
	for _, pattern := range f.FollowPatterns {
		if matchPattern(pattern, p) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard" and "/admin"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1"
func matchPattern(pattern, p string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if strings.HasPrefix(p, prefix+"/") || p == prefix {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, p); err == nil && matched {
		return true
	}

	// Bare filename globs also match the last path segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(p)); err == nil && matched {
			return true
		}
	}

	return false
}

// skipHref reports whether an href can never name a crawlable page.
func skipHref(href string) bool {
	lower := strings.ToLower(href)
	return href == "" ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:")
}

// resolveHref turns href into a normalized absolute URL, or "" if it should
// be dropped. Relative hrefs are resolved against base only when resolve is set.
func resolveHref(base *url.URL, href string, resolve bool) string {
	href = strings.TrimSpace(href)
	if skipHref(href) {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if !u.IsAbs() || u.Host == "" {
		if !resolve || base == nil {
			return ""
		}
		u = base.ResolveReference(u)
	}

	return Normalize(u.String())
}
