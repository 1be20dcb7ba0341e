package artifact

import (
	"context"
	"errors"
)

// Sink is the persistence contract shared by every type in this package.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Write stores the fetched content of url.
	Write(ctx context.Context, url string, content []byte) error

	// WriteLinks stores the links extracted from url.
	WriteLinks(ctx context.Context, url string, links []string) error
}

// Nop is a Sink that discards everything.
type Nop struct{}

// Write implements Sink.
func (Nop) Write(context.Context, string, []byte) error { return nil }

// WriteLinks implements Sink.
func (Nop) WriteLinks(context.Context, string, []string) error { return nil }

// Multi writes to several sinks.
// Unlike a report writer it does not stop at the first failure: every sink
// sees every call and the errors are joined.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a Sink that writes to all non-nil sinks.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{sinks: make([]Sink, 0, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Len returns the number of sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Write implements Sink.
func (m *Multi) Write(ctx context.Context, url string, content []byte) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, url, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteLinks implements Sink.
func (m *Multi) WriteLinks(ctx context.Context, url string, links []string) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.WriteLinks(ctx, url, links); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
