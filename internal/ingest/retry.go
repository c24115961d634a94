package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"go-worldstats/internal/model"
)

// DefaultRetryConfig is used for dataset downloads
var DefaultRetryConfig = model.RetryConfig{
	MaxAttempts:       3,
	InitialDelay:      1 * time.Second,
	MaxDelay:          30 * time.Second,
	BackoffMultiplier: 2.0,
	Jitter:            true,
}

// StatusError is a non-2xx HTTP response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// isRetryableError reports whether another attempt could succeed: network
// failures, 5xx and 429 are retried, other statuses and cancellation are not.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return !errors.Is(err, context.DeadlineExceeded)
}

// calculateDelay returns the wait before the given retry (1-based), with
// exponential backoff capped at MaxDelay and optional ±10% jitter
func calculateDelay(cfg model.RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.BackoffMultiplier, float64(attempt-1)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter && delay > 0 {
		delay += time.Duration(float64(delay) * 0.2 * (rand.Float64() - 0.5))
	}
	return delay
}

// retry runs op until it succeeds, fails permanently or attempts run out.
// It returns the number of attempts made.
func retry(ctx context.Context, cfg model.RetryConfig, onRetry func(attempt int, delay time.Duration, err error), op func(ctx context.Context) error) (int, error) {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return attempt, nil
		}
		if attempt == attempts || !isRetryableError(err) {
			return attempt, err
		}
		delay := calculateDelay(cfg, attempt)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
	return attempts, err
}
