package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/localrivet/distill/internal/telemetry"
)

// Retrying retries a failed generation with a linearly growing delay.
type Retrying struct {
	next       Generator
	maxRetries int
	retryDelay time.Duration
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

// NewRetrying wraps next. A negative maxRetries disables retries.
func NewRetrying(next Generator, maxRetries int, retryDelay time.Duration, metrics *telemetry.MetricsCollector, logger *slog.Logger) *Retrying {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{
		next:       next,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		metrics:    metrics,
		logger:     logger,
	}
}

// Name returns the wrapped engine name
func (r *Retrying) Name() string {
	return r.next.Name()
}

// Generate calls the wrapped generator up to maxRetries+1 times.
// Missing credentials and context cancellation are not retried.
func (r *Retrying) Generate(ctx context.Context, text string, b Bounds) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			r.metrics.IncrementCounter(telemetry.MetricRetryAttempts, 1)
			r.logger.Debug("Retrying generation", "engine", r.Name(), "attempt", attempt, "error", lastErr)

			select {
			case <-ctx.Done():
				return "", lastErr
			case <-time.After(r.retryDelay * time.Duration(attempt)):
			}
		}

		summary, err := r.next.Generate(ctx, text, b)
		if err == nil {
			if attempt > 0 {
				r.metrics.IncrementCounter(telemetry.MetricRetrySuccess, 1)
			}
			return summary, nil
		}

		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}

	return "", lastErr
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, ErrMissingAPIKey) && !errors.Is(err, context.Canceled)
}
