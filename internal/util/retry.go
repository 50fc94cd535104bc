package util

import (
	"context"
	"time"
)

// Feed-fetch retry policy. Feeds refresh every minute anyway, so one quick
// second attempt is all a transient failure gets before the feed degrades.
const (
	fetchAttempts  = 2
	fetchBaseDelay = 500 * time.Millisecond
)

// RetryFetch runs fn under the feed-fetch retry policy.
func RetryFetch(ctx context.Context, fn func() error) error {
	return Retry(ctx, fetchAttempts, fetchBaseDelay, fn)
}

// Retry calls fn up to maxAttempts times with exponential backoff starting
// at baseDelay. It returns nil on the first successful call, or the last
// error if all attempts fail. Context cancellation is honored between
// attempts.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Don't sleep after the last failed attempt.
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return err
}
