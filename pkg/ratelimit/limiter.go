package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow reports whether a request may proceed right now
	Allow() bool
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
}

// PerMinute returns a limiter admitting n requests per minute with a burst of
// one; n <= 0 disables limiting
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

// HostLimiter paces requests independently for every destination host
type HostLimiter struct {
	perMinute int
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewHostLimiter creates a limiter allowing perMinute requests to each host
func NewHostLimiter(perMinute int) *HostLimiter {
	return &HostLimiter{
		perMinute: perMinute,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to rawURL's host may proceed
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	return h.For(rawURL).Wait(ctx)
}

// Allow reports whether a request to rawURL's host may proceed right now
func (h *HostLimiter) Allow(rawURL string) bool {
	return h.For(rawURL).Allow()
}

// For returns the limiter for rawURL's host, creating it on first use
func (h *HostLimiter) For(rawURL string) Limiter {
	key := hostKey(rawURL)

	h.mu.Lock()
	defer h.mu.Unlock()

	limiter, ok := h.limiters[key]
	if !ok {
		limiter = PerMinute(h.perMinute)
		h.limiters[key] = limiter
	}
	return limiter
}

// Hosts returns the number of hosts seen so far
func (h *HostLimiter) Hosts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.limiters)
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Hostname())
}
