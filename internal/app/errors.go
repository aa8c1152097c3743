package service

import (
	"errors"
	"fmt"
)

// ErrMissingEventTypeHeader rejects webhook deliveries that carry no
// provider event-type header at all.
var ErrMissingEventTypeHeader = errors.New("the request carries no provider event-type header")

// UnknownEntityError reports a digest or inbox id that resolves to nothing.
// Because projections are eventually consistent, "unknown" may also mean
// "not materialized yet"; callers that tolerate staleness handle that
// before raising this error.
type UnknownEntityError struct {
	Kind string
	ID   string
}

func (e *UnknownEntityError) Error() string {
	article := "a"
	if e.Kind == "inbox" {
		article = "an"
	}
	return fmt.Sprintf("could not find %s %s with id %s", article, e.Kind, e.ID)
}

// InvalidIdentifierError reports an id that is not a well-formed UUID. It
// is distinct from UnknownEntityError so the API can answer 400 rather
// than 404.
type InvalidIdentifierError struct {
	Kind  string
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("the value %q is not a valid %s identifier", e.Value, e.Kind)
}
