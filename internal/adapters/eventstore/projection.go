package eventstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/pushlog/pkg/metrics"
)

// PartitionState reads the materialized state of one projection partition.
// A 404 or an empty body both come back as ErrNotFound: the store does not
// distinguish a partition that never existed from one that has not been
// materialized yet, and neither does this reader. No caching happens here;
// state can change between calls.
func (c *Client) PartitionState(ctx context.Context, projection, partition string) ([]byte, error) {
	if strings.TrimSpace(projection) == "" || strings.TrimSpace(partition) == "" {
		return nil, fmt.Errorf("%w: projection and partition must not be empty", ErrFatal)
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/projection/%s/state?partition=%s",
		c.base, url.PathEscape(projection), url.QueryEscape(partition))
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build state request: %w", ErrFatal, err)
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveStoreRequestDuration("projection", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreRequest("projection", "transient")
		return nil, fmt.Errorf("%w: read partition %q: %w", ErrTransient, partition, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordStoreRequest("projection", "not_found")
		metrics.RecordProjectionNotFound(projection)
		return nil, fmt.Errorf("%w: partition %q", ErrNotFound, partition)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		metrics.RecordStoreRequest("projection", "transient")
		return nil, fmt.Errorf("%w: read partition %q returned status %d", ErrTransient, partition, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		metrics.RecordStoreRequest("projection", "fatal")
		return nil, fmt.Errorf("%w: read partition %q returned status %d", ErrFatal, partition, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordStoreRequest("projection", "transient")
		return nil, fmt.Errorf("%w: read partition %q body: %w", ErrTransient, partition, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		metrics.RecordStoreRequest("projection", "not_found")
		metrics.RecordProjectionNotFound(projection)
		return nil, fmt.Errorf("%w: partition %q", ErrNotFound, partition)
	}

	metrics.RecordStoreRequest("projection", "ok")
	return body, nil
}
