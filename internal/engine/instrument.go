package engine

import (
	"context"
	"time"

	"github.com/localrivet/distill/internal/telemetry"
)

// instrumented records call counts and response times for a generator.
type instrumented struct {
	next    Generator
	metrics *telemetry.MetricsCollector
}

// Instrument wraps g so every call is counted in metrics.
func Instrument(g Generator, metrics *telemetry.MetricsCollector) Generator {
	return &instrumented{next: g, metrics: metrics}
}

func (i *instrumented) Name() string {
	return i.next.Name()
}

func (i *instrumented) Generate(ctx context.Context, text string, b Bounds) (string, error) {
	name := i.next.Name()
	start := time.Now()

	i.metrics.IncrementCounter(telemetry.MetricGenerationCalls(name), 1)
	summary, err := i.next.Generate(ctx, text, b)
	i.metrics.RecordTimer(telemetry.MetricResponseTime(name), time.Since(start))
	i.metrics.RecordTimestamp(telemetry.MetricGenerationCalls(name))

	if err != nil {
		i.metrics.IncrementCounter(telemetry.MetricGenerationFailure, 1)
		return "", err
	}
	i.metrics.IncrementCounter(telemetry.MetricGenerationSuccess, 1)
	return summary, nil
}
