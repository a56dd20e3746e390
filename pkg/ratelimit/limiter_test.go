package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerMinute(t *testing.T) {
	limiter := PerMinute(60)

	assert.True(t, limiter.Allow(), "first request should pass")
	assert.False(t, limiter.Allow(), "burst of one should block the second request")
}

func TestPerMinuteDisabled(t *testing.T) {
	limiter := PerMinute(0)

	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow())
	}
}

func TestHostLimiterSeparatesHosts(t *testing.T) {
	h := NewHostLimiter(1)

	assert.True(t, h.Allow("https://i.redd.it/a.png"))
	assert.False(t, h.Allow("https://I.REDD.IT/b.png"), "host comparison is case-insensitive")
	assert.True(t, h.Allow("https://i.imgur.com/c.jpg"), "other hosts keep their own budget")
	assert.Equal(t, 2, h.Hosts())
}

func TestHostLimiterWaitHonoursContext(t *testing.T) {
	h := NewHostLimiter(1)
	require.NoError(t, h.Wait(context.Background(), "https://www.reddit.com/r/golang"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := h.Wait(ctx, "https://www.reddit.com/r/golang")
	assert.Error(t, err)
}

func TestHostLimiterWaitPaces(t *testing.T) {
	h := NewHostLimiter(1200) // one every 50ms

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, h.Wait(context.Background(), "https://example.com/x"))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
