// Package retry runs operations again after transient failures.
//
// Backoff is pluggable (exponential with optional jitter, constant) and every
// wait honours the caller's context. Gallery metadata requests use a
// jitter-free doubling backoff that retries only rate-limit responses:
//
//	cfg := &retry.Config{
//		MaxAttempts: 6,
//		Backoff:     retry.Doubling(time.Second),
//		RetryIf:     retry.RateLimitedOnly,
//		Logger:      log,
//	}
//	body, err := retry.DoWithResult(ctx, fetch, cfg)
package retry
