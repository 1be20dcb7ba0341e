package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoSeed is returned when no seed URL is given.
	ErrNoSeed = errors.New("no seed specified: provide a seed URL")

	// ErrInvalidSeed is returned when the seed is not an absolute URL.
	ErrInvalidSeed = errors.New("invalid seed: must be an absolute URL with scheme and host")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxLinks is returned when the link budget is not positive.
	ErrInvalidMaxLinks = errors.New("invalid max links: must be positive")

	// ErrInvalidCapacity is returned when the initial set capacity is not positive.
	ErrInvalidCapacity = errors.New("invalid initial capacity: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidScheme is returned when the scheme list is empty or holds
	// something other than a bare scheme name.
	ErrInvalidScheme = errors.New("invalid scheme: expected names such as \"https\"")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
