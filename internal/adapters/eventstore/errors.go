package eventstore

import "errors"

// Sentinel kinds for event store errors. Callers classify with errors.Is:
// ErrTransient failures are retry-eligible, ErrFatal ones never are, and
// ErrNotFound is ambiguous between never-created and not-yet-materialized.
var (
	ErrTransient   = errors.New("event store temporarily unavailable")
	ErrFatal       = errors.New("event store rejected the request")
	ErrNotFound    = errors.New("no state for partition")
	ErrEmptyStream = errors.New("stream name must not be empty")
	ErrNoEvents    = errors.New("events batch must not be empty")
)
