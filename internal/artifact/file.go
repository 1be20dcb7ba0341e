package artifact

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/OneOfOne/xxhash"
)

// File and directory names inside a FileSink output directory.
const (
	// PagesDir holds one file per fetched page.
	PagesDir = "pages"

	// LinksFile lists every extracted link, one per line, in the order pages finished.
	LinksFile = "links.txt"

	// maxNameLen bounds the readable part of a page filename.
	maxNameLen = 120
)

// FileSink writes page bodies and extracted links to disk.
//
// Layout:
//
//	<dir>/pages/<host>_<path>-<hash>.html
//	<dir>/links.txt
type FileSink struct {
	dir string

	mu    sync.Mutex
	links *os.File
}

// NewFileSink creates the output directory if needed and opens the link
// list for appending. Links from earlier runs are kept.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Join(dir, PagesDir), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, LinksFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // path from config
	if err != nil {
		return nil, fmt.Errorf("failed to open links file: %w", err)
	}

	return &FileSink{dir: dir, links: f}, nil
}

// Dir returns the output directory.
func (s *FileSink) Dir() string {
	return s.dir
}

// PagePath returns where the content of rawURL is written.
func (s *FileSink) PagePath(rawURL string) string {
	return filepath.Join(s.dir, PagesDir, pageFilename(rawURL))
}

// Write stores content in its own file under pages/.
func (s *FileSink) Write(ctx context.Context, rawURL string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.PagePath(rawURL)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

// WriteLinks appends links to links.txt. Links of one page stay together.
func (s *FileSink) WriteLinks(ctx context.Context, _ string, links []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := bufio.NewWriter(s.links)
	for _, link := range links {
		if _, err := w.WriteString(link + "\n"); err != nil {
			return fmt.Errorf("writing links: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing links: %w", err)
	}
	return nil
}

// Close closes the link list.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links.Close()
}

// pageFilename converts a URL into a flat, unique filename.
// Example: https://example.com/docs/intro → example_com_docs_intro-<hash>.html
func pageFilename(rawURL string) string {
	name := sanitize(rawURL)
	if parsed, err := url.Parse(rawURL); err == nil {
		parts := []string{sanitize(parsed.Host)}
		if p := strings.Trim(parsed.Path, "/"); p != "" {
			for _, seg := range strings.Split(p, "/") {
				parts = append(parts, sanitize(seg))
			}
		}
		name = strings.Join(parts, "_")
	}

	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	// Sanitizing is lossy, so the hash keeps distinct URLs in distinct files.
	return fmt.Sprintf("%s-%016x.html", name, xxhash.ChecksumString64(rawURL))
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
