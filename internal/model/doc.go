// Package model defines the data shared between the crawler, the report
// writers, the metrics CSV and the database.
//
// The central type is RunSummary, the outcome of one crawl run. It is kept
// in its own package so crawler, report and database can all depend on it
// without importing each other.
package model
