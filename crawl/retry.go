package crawl

import (
	"context"
	"log/slog"
	"time"
)

// NavigateFunc is the signature for loading a URL into a page.
type NavigateFunc func(ctx context.Context, url string) error

// RetryDelays returns n exponential backoff delays starting at 1s: 1s, 2s, 4s, ...
// n <= 0 yields no retries.
func RetryDelays(n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	delays := make([]time.Duration, n)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// NavigateWithRetry attempts to load a URL, retrying once per entry in delays.
// With no delays the URL is attempted exactly once.
// The logger, if provided, receives a debug record for each retry.
func NavigateWithRetry(ctx context.Context, url string, navigate NavigateFunc, logger *slog.Logger, delays []time.Duration) error {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := navigate(ctx, url)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		if logger != nil {
			logger.Debug("retry navigation", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return lastErr
}
