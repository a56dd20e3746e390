// Package reddit adapts the Reddit API client to the listing operations the
// archiver consumes. Saved, upvoted and per-user listings are followed page by
// page, each request paced by a per-minute limiter and retried on rate
// limiting and server errors.
package reddit
