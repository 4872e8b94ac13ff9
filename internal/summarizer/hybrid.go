package summarizer

import (
	"context"
	"log/slog"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/telemetry"
	"github.com/localrivet/distill/internal/textproc"
)

// composeOutcome records which path a hybrid composition took.
type composeOutcome int

const (
	outcomeGenerated composeOutcome = iota
	outcomeFallback
)

func (o composeOutcome) String() string {
	if o == outcomeFallback {
		return "fallback"
	}
	return "generated"
}

// composition is the internal result of Compose.
type composition struct {
	summary string
	outcome composeOutcome
	// cause is the generation error that triggered the fallback.
	cause error
}

// Composer runs extractive selection followed by abstractive generation.
type Composer struct {
	selector  *Selector
	segmenter *textproc.Segmenter
	metrics   *telemetry.MetricsCollector
	logger    *slog.Logger
}

// NewComposer creates a Composer.
func NewComposer(selector *Selector, segmenter *textproc.Segmenter, metrics *telemetry.MetricsCollector, logger *slog.Logger) *Composer {
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		selector:  selector,
		segmenter: segmenter,
		metrics:   metrics,
		logger:    logger,
	}
}

// Compose extracts up to twice the requested sentences within twice the
// requested words, then generates over the extract with the original
// bounds. When generation fails the extractive summary for the original
// request is returned instead and the fallback is logged and counted.
func (c *Composer) Compose(ctx context.Context, text string, gen engine.Generator, req Request) (string, error) {
	comp, err := c.compose(ctx, text, gen, req)
	if err != nil {
		return "", err
	}
	return comp.summary, nil
}

func (c *Composer) compose(ctx context.Context, text string, gen engine.Generator, req Request) (composition, error) {
	sentences, err := c.segmenter.Split(text)
	if err != nil {
		return composition{}, err
	}

	target := min(2*req.MaxSentences, len(sentences))
	extract, err := c.selector.SelectWithin(ctx, text, target, 2*req.MaxLength)
	if err != nil {
		return composition{}, err
	}

	summary, genErr := gen.Generate(ctx, extract, req.bounds())
	if genErr == nil {
		return composition{summary: summary, outcome: outcomeGenerated}, nil
	}

	fallback, err := c.selector.Select(ctx, text, req.MaxSentences)
	if err != nil {
		return composition{}, errortypes.InternalError(err, "hybrid fallback failed").
			WithComponent(errortypes.ComponentComposer).
			WithField("generation_error", genErr.Error())
	}

	c.metrics.IncrementCounter(telemetry.MetricHybridFallbacks, 1)
	c.logger.Warn("Generation failed, falling back to extractive summary",
		"engine", gen.Name(),
		"outcome", outcomeFallback.String(),
		"error", genErr)

	return composition{summary: fallback, outcome: outcomeFallback, cause: genErr}, nil
}
