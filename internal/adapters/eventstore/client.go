// Package eventstore is the HTTP client for the external event-sourced
// store: batch appends to named streams and projection-state reads.
package eventstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/pushlog/internal/domain/event"
	"github.com/okian/pushlog/pkg/metrics"
)

// defaultTimeout bounds a single store call unless configured otherwise.
const defaultTimeout = 5 * time.Second

// Client talks to the event store. It is stateless and safe for concurrent
// use; every method issues exactly one HTTP call.
type Client struct {
	base    string
	user    string
	pass    string
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a store client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AppendToStream appends events to the named stream as one batch, in order.
// Failures are classified: network errors, timeouts and 5xx wrap
// ErrTransient; a 4xx rejection wraps ErrFatal and must not be retried.
func (c *Client) AppendToStream(ctx context.Context, stream string, events []event.Event) error {
	if strings.TrimSpace(stream) == "" {
		return ErrEmptyStream
	}
	if len(events) == 0 {
		return ErrNoEvents
	}

	body, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("%w: marshal events: %w", ErrFatal, err)
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost,
		c.base+"/streams/"+url.PathEscape(stream), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build append request: %w", ErrFatal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveStoreRequestDuration("append", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreRequest("append", "transient")
		return fmt.Errorf("%w: append to stream %q: %w", ErrTransient, stream, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		metrics.RecordStoreRequest("append", "ok")
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		metrics.RecordStoreRequest("append", "transient")
		return fmt.Errorf("%w: append to stream %q returned status %d", ErrTransient, stream, resp.StatusCode)
	default:
		metrics.RecordStoreRequest("append", "fatal")
		return fmt.Errorf("%w: append to stream %q returned status %d", ErrFatal, stream, resp.StatusCode)
	}
}
