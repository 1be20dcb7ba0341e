// Package log provides slog loggers that redact sensitive information.
//
// A crawler logs a lot of URLs, and URLs carry secrets: signed query
// parameters, API keys, embedded credentials. RedactingHandler wraps any
// slog.Handler and
//   - masks values stored under sensitive keys (cookie, authorization, token)
//   - masks values that look like secrets (bearer tokens, JWTs)
//   - rewrites URLs inside string and error values so that userinfo and
//     sensitive query parameters (token, key, sig, password) are replaced
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("fetch failed", "url", "https://user:pw@example.com/?sig=abc")
//	// url=https://REDACTED@example.com/?sig=REDACTED
package log
