package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/telemetry"
)

func newComposer(t *testing.T, metrics *telemetry.MetricsCollector) (*Composer, *Selector) {
	t.Helper()
	sel := newSelector(t, newsEmbedder())
	return NewComposer(sel, newSegmenter(t), metrics, nil), sel
}

func TestComposeGeneratesOverExtract(t *testing.T) {
	metrics := telemetry.NewMetricsCollector()
	composer, _ := newComposer(t, metrics)
	gen := engine.NewCountingGenerator(engine.Bart, func(string) string { return "Budget approved." })

	req := Request{MaxSentences: 2, MaxLength: 150, MinLength: 50}
	comp, err := composer.compose(context.Background(), newsText, gen, req)
	require.NoError(t, err)

	assert.Equal(t, "Budget approved.", comp.summary)
	assert.Equal(t, outcomeGenerated, comp.outcome)
	assert.NoError(t, comp.cause)

	// Twice the requested sentences are extracted, in document order.
	require.Equal(t, 1, gen.Calls())
	want := strings.Join([]string{newsSentences[0], newsSentences[1], newsSentences[2], newsSentences[4]}, " ")
	assert.Equal(t, want, gen.Inputs()[0])
	assert.Equal(t, engine.Bounds{MaxLength: 150, MinLength: 50, MaxSentences: 2}, gen.LastBounds())
	assert.Zero(t, metrics.GetCounter(telemetry.MetricHybridFallbacks))
}

func TestComposeExtractCapsTarget(t *testing.T) {
	composer, _ := newComposer(t, nil)
	gen := engine.NewCountingGenerator(engine.Bart, nil)

	// 2*5 exceeds the sentence count, so the whole text is the extract.
	_, err := composer.Compose(context.Background(), newsText, gen, Request{MaxSentences: 5, MaxLength: 150, MinLength: 50})
	require.NoError(t, err)
	require.Equal(t, 1, gen.Calls())
	assert.Equal(t, newsText, gen.Inputs()[0])
}

func TestComposeFallsBackToExtractive(t *testing.T) {
	metrics := telemetry.NewMetricsCollector()
	composer, sel := newComposer(t, metrics)
	genErr := errors.New("model offline")
	gen := engine.NewFailingGenerator(engine.Bart, -1, genErr, "")

	req := Request{MaxSentences: 2, MaxLength: 150, MinLength: 50}
	comp, err := composer.compose(context.Background(), newsText, gen, req)
	require.NoError(t, err)

	expected, err := sel.Select(context.Background(), newsText, req.MaxSentences)
	require.NoError(t, err)

	assert.Equal(t, expected, comp.summary)
	assert.Equal(t, newsSentences[0]+" "+newsSentences[2], comp.summary)
	assert.Equal(t, outcomeFallback, comp.outcome)
	assert.Equal(t, "fallback", comp.outcome.String())
	assert.ErrorIs(t, comp.cause, genErr)
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, int64(1), metrics.GetCounter(telemetry.MetricHybridFallbacks))
}

func TestComposeWordCapLimitsExtract(t *testing.T) {
	composer, _ := newComposer(t, nil)
	gen := engine.NewCountingGenerator(engine.Bart, nil)

	// A cap of 2*6 words leaves room for the top sentence only.
	_, err := composer.Compose(context.Background(), newsText, gen, Request{MaxSentences: 2, MaxLength: 6, MinLength: 0})
	require.NoError(t, err)
	require.Equal(t, 1, gen.Calls())
	assert.Equal(t, newsSentences[0], gen.Inputs()[0])
}
