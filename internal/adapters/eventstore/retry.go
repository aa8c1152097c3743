package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/okian/pushlog/pkg/metrics"
)

// Retry runs fn, retrying up to attempts extra times with exponential
// backoff starting at base. Only errors wrapping ErrTransient are retried;
// fatal errors and successes return immediately. Context cancellation stops
// the loop and surfaces the last error.
func Retry(ctx context.Context, attempts int, base time.Duration, fn func(context.Context) error) error {
	if base <= 0 {
		base = time.Millisecond
	}
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, ErrTransient) || attempt >= attempts {
			return err
		}
		metrics.RecordAppendRetry()
		select {
		case <-time.After(base << attempt):
		case <-ctx.Done():
			return err
		}
	}
}
