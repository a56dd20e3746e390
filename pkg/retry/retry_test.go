package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "redditsave/pkg/errors"
	"redditsave/pkg/logger"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0,
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{0, 0, "No attempt yet"},
		{1, 100 * time.Millisecond, "First attempt"},
		{2, 200 * time.Millisecond, "Second attempt"},
		{3, 400 * time.Millisecond, "Third attempt"},
		{4, 800 * time.Millisecond, "Fourth attempt"},
		{5, 1 * time.Second, "Fifth attempt (capped at max)"},
		{6, 1 * time.Second, "Sixth attempt (still capped)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			if delay := backoff.NextDelay(test.attempt); delay != test.expected {
				t.Errorf("Expected delay %v, got %v", test.expected, delay)
			}
		})
	}
}

func TestExponentialBackoffWithJitter(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	delays := make(map[time.Duration]bool)
	for i := 0; i < 20; i++ {
		delay := backoff.NextDelay(2)
		if delay < 140*time.Millisecond || delay > 260*time.Millisecond {
			t.Fatalf("Jittered delay %v outside expected bounds", delay)
		}
		delays[delay] = true
	}

	if len(delays) < 2 {
		t.Error("Expected multiple different delays with jitter, but got consistent delays")
	}
}

func TestDoublingIsUncappedAndJitterFree(t *testing.T) {
	backoff := Doubling(time.Second)

	previous := time.Duration(0)
	for attempt := 1; attempt <= 8; attempt++ {
		delay := backoff.NextDelay(attempt)
		if attempt > 1 && delay != 2*previous {
			t.Errorf("Attempt %d: expected %v, got %v", attempt, 2*previous, delay)
		}
		previous = delay
	}
	if previous != 128*time.Second {
		t.Errorf("Expected 128s after eight attempts, got %v", previous)
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
	}

	if err := Do(context.Background(), op, cfg); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	persistent := errors.New("persistent error")
	op := func(ctx context.Context) error {
		attempts++
		return persistent
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
	}

	err := Do(context.Background(), op, cfg)
	if !errors.Is(err, persistent) {
		t.Errorf("Expected wrapped persistent error, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	notFound := errs.New(errs.ErrorTypeNotFound, "post deleted")

	op := func(ctx context.Context) error {
		attempts++
		return notFound
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
	}

	err := Do(context.Background(), op, cfg)
	if err != notFound {
		t.Errorf("Expected not found error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRateLimitedOnly(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", errs.FromStatus(429, "https://www.reddit.com/gallery/x.json"), true},
		{"wrapped rate limit", errors.Join(errors.New("ctx"), errs.New(errs.ErrorTypeRateLimit, "slow down")), true},
		{"server error", errs.FromStatus(503, "https://www.reddit.com/gallery/x.json"), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RateLimitedOnly(tt.err); got != tt.want {
				t.Errorf("RateLimitedOnly() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryDelaysDouble(t *testing.T) {
	var delays []time.Duration
	attempts := 0

	cfg := &Config{
		MaxAttempts: 4,
		Backoff:     Doubling(time.Millisecond),
		RetryIf:     RateLimitedOnly,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
		Logger: logger.NewTestLogger(),
	}

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errs.FromStatus(429, "https://example.com")
	}, cfg)

	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", attempts)
	}
	if len(delays) != 3 {
		t.Fatalf("Expected 3 waits, got %d", len(delays))
	}
	for i := 1; i < len(delays); i++ {
		if delays[i] < 2*delays[i-1] {
			t.Errorf("Delay %v is less than double the previous %v", delays[i], delays[i-1])
		}
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	op := func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 100 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
	}

	err := Do(ctx, op, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context cancellation, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts before cancellation, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"network", errs.New(errs.ErrorTypeNetwork, "reset"), true},
		{"parsing", errs.New(errs.ErrorTypeParsing, "bad json"), false},
		{"untyped", errors.New("mystery"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
	}

	result, err := DoWithResult(context.Background(), op, cfg)
	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got '%s'", result)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}
