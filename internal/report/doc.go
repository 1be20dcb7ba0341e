// Package report renders crawl run summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid timing chart
//
// Writers implement the Writer interface, so they can be used
// interchangeably and combined with MultiWriter.
package report
