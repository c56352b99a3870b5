// Package retry runs an operation with capped exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	ShouldRetry func(error) bool
}

type Option func(*Config)

func WithMaxAttempts(attempts int) Option {
	return func(c *Config) {
		if attempts > 0 {
			c.MaxAttempts = attempts
		}
	}
}

func WithBaseDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.BaseDelay = delay
	}
}

func WithMaxDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = delay
	}
}

// WithShouldRetry stops retrying as soon as fn returns false for an error.
func WithShouldRetry(fn func(error) bool) Option {
	return func(c *Config) {
		c.ShouldRetry = fn
	}
}

// Do calls fn until it succeeds, the attempts run out, a non-retryable error comes back, or ctx ends.
func Do(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) error {
	cfg := &Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(Backoff(attempt, cfg.BaseDelay, cfg.MaxDelay)):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after %d attempt(s): %w", attempt+1, lastErr)
		}
	}

	if cfg.MaxAttempts > 1 {
		return fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
	}
	return lastErr
}

// Backoff returns baseDelay * 2^attempt, capped at maxDelay.
func Backoff(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	return delay
}
