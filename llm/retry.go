package llm

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryConfig bounds the retry policy for transient failures.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns the standard policy: three retries starting at
// half a second, doubling, capped at thirty seconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Retrying wraps a Client with bounded exponential backoff on transient
// errors. Fatal errors propagate immediately.
type Retrying struct {
	inner  Client
	config RetryConfig
	logger *zap.Logger

	// sleep is swappable in tests.
	sleep func(context.Context, time.Duration) error
}

// NewRetrying wraps inner with the given retry policy.
func NewRetrying(inner Client, config RetryConfig, logger *zap.Logger) *Retrying {
	return &Retrying{
		inner:  inner,
		config: config,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Model returns the wrapped client's model identifier.
func (r *Retrying) Model() string { return r.inner.Model() }

// Generate calls the wrapped client, retrying transient failures.
func (r *Retrying) Generate(ctx context.Context, prompt, systemPrompt string) (Response, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt, r.config)
			r.logger.Warn("retrying llm call",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))
			if err := r.sleep(ctx, delay); err != nil {
				return Response{}, &TransientError{Err: err}
			}
		}

		resp, err := r.inner.Generate(ctx, prompt, systemPrompt)
		if err == nil {
			return resp, nil
		}
		if !IsTransient(err) {
			return Response{}, err
		}
		lastErr = err
	}

	return Response{}, lastErr
}

// backoff computes the delay before the given retry attempt, with ±10%
// jitter to avoid synchronized retries across workers.
func backoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	jitter := delay * 0.1
	delay += (rand.Float64()*2 - 1) * jitter

	return time.Duration(delay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
