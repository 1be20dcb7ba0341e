// Package metrics collects per-phase timing during a crawl and appends run
// summaries to a CSV file for thread-count benchmarking.
//
// The CSV is append-only. A header row is written only when the file is
// new or empty, so repeated runs with different worker counts accumulate
// into one table:
//
//	Threads,ElapsedSeconds,Processed,FetchSeconds,ExtractSeconds,DedupSeconds
//	4,12.503,500,40.112,1.380,0.021
//	8,7.214,503,,,
//
// Timing columns are blank for runs without timing collection.
package metrics
