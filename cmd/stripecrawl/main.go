// Package main provides the entry point for the stripecrawl CLI.
//
// stripecrawl crawls the web from a seed URL with a pool of concurrent
// workers until a link budget is spent or no links remain.
//
// Usage:
//
//	stripecrawl crawl <seed-url>
//	stripecrawl history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
