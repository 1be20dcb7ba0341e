package crawler

import (
	"errors"
	"fmt"
)

// Engine and fetcher errors.
var (
	// ErrEmptySeed is returned by Run when the seed URL is empty.
	// The empty string is reserved as the frontier's poison value.
	ErrEmptySeed = errors.New("seed URL is empty")

	// ErrInvalidSeed is returned by Run when the seed is not an absolute URL.
	ErrInvalidSeed = errors.New("seed URL must be absolute with scheme and host")

	// ErrAlreadyRun is returned when Run is called twice on one Engine.
	// An Engine owns the state of exactly one crawl run.
	ErrAlreadyRun = errors.New("engine has already run")

	// ErrUnexpectedStatus is wrapped by FetchError for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxyAddress is returned for proxy addresses that are not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// FetchError is a transient, per-URL fetch failure: timeouts, DNS errors,
// connection resets, non-2xx responses and body read errors.
// The engine logs and counts these and treats the page as having no links.
type FetchError struct {
	// URL is the URL that failed.
	URL string

	// StatusCode is the HTTP status, or zero when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}
