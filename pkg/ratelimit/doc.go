// Package ratelimit paces outgoing requests with golang.org/x/time/rate.
//
// HostLimiter keeps one limiter per destination host so that slow media hosts
// do not hold back requests to reddit.com and the other way round.
package ratelimit
