package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/localrivet/distill/internal/telemetry"
	"github.com/localrivet/distill/internal/textproc"
)

// Chunked generates over long inputs by summarizing sentence-aligned chunks
// and recombining the partial summaries.
type Chunked struct {
	next      Generator
	segmenter *textproc.Segmenter
	threshold int
	metrics   *telemetry.MetricsCollector
	logger    *slog.Logger
}

// NewChunked wraps next. Inputs longer than threshold, measured in the
// segmenter's chunk unit, are chunked; a non-positive threshold uses DefaultChunkThreshold.
func NewChunked(next Generator, segmenter *textproc.Segmenter, threshold int, metrics *telemetry.MetricsCollector, logger *slog.Logger) *Chunked {
	if threshold <= 0 {
		threshold = DefaultChunkThreshold
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunked{
		next:      next,
		segmenter: segmenter,
		threshold: threshold,
		metrics:   metrics,
		logger:    logger,
	}
}

// Name returns the wrapped engine name
func (c *Chunked) Name() string {
	return c.next.Name()
}

// Generate summarizes text directly when it fits the threshold. Otherwise
// each chunk is summarized, the partial summaries are joined with a space,
// and a join longer than b.MaxLength characters is summarized once more.
func (c *Chunked) Generate(ctx context.Context, text string, b Bounds) (string, error) {
	length := c.segmenter.Measure(text)
	if length <= c.threshold {
		return c.next.Generate(ctx, text, b)
	}

	chunks, err := c.segmenter.ChunkText(text, c.threshold)
	if err != nil {
		return "", err
	}

	c.metrics.IncrementCounter(telemetry.MetricChunkedCalls, 1)
	c.metrics.IncrementCounter(telemetry.MetricChunksTotal, int64(len(chunks)))
	c.logger.Debug("Chunking long input",
		"engine", c.Name(),
		"length", length,
		"chunks", len(chunks),
		"unit", c.segmenter.Unit())

	partials := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		summary, err := c.next.Generate(ctx, chunk, b)
		if err != nil {
			return "", err
		}
		partials = append(partials, summary)
	}

	combined := strings.Join(partials, " ")
	if textproc.RuneLength(combined) <= b.MaxLength {
		return combined, nil
	}

	c.metrics.IncrementCounter(telemetry.MetricSecondPass, 1)
	c.logger.Debug("Condensing combined chunk summaries",
		"engine", c.Name(),
		"characters", textproc.RuneLength(combined),
		"max_length", b.MaxLength)

	return c.next.Generate(ctx, combined, b)
}
