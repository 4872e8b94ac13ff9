package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/distill/internal/telemetry"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(Config{OpenAIAPIKey: "sk-test", MaxRetries: 1}, newSegmenter(t), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, Names(), r.Available())
	assert.True(t, r.Configured(Bart))
	assert.True(t, r.Configured(OpenAI))
	assert.False(t, r.Configured(Cohere))

	g, err := r.Get(Pegasus)
	require.NoError(t, err)
	assert.Equal(t, Pegasus, g.Name())
	assert.IsType(t, &Chunked{}, g)

	g, err = r.Get(OpenAI)
	require.NoError(t, err)
	assert.Equal(t, OpenAI, g.Name())
	assert.IsType(t, &Retrying{}, g)

	_, err = r.Get("gpt-neo")
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestStaticRegistry(t *testing.T) {
	metrics := telemetry.NewMetricsCollector()
	r := NewStaticRegistry(newSegmenter(t), 0, metrics, nil,
		NewStaticGenerator(Bart, "Local.", nil),
		NewStaticGenerator(Cohere, "Remote.", nil),
	)

	assert.Equal(t, []string{Bart, Cohere}, r.Available())
	assert.Same(t, metrics, r.Metrics())

	g, err := r.Get(Cohere)
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "text", Bounds{})
	require.NoError(t, err)
	assert.Equal(t, "Remote.", out)
	assert.Equal(t, int64(1), metrics.GetCounter(telemetry.MetricGenerationCalls(Cohere)))

	_, err = r.Get(T5)
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestEngineNames(t *testing.T) {
	for _, name := range Names() {
		assert.True(t, IsKnown(name))
	}
	assert.False(t, IsKnown("gpt-4"))
	assert.True(t, IsRemote(OpenAI))
	assert.True(t, IsRemote(Cohere))
	assert.False(t, IsRemote(Bart))

	id, ok := ModelID(T5)
	assert.True(t, ok)
	assert.Equal(t, "t5-base", id)
	_, ok = ModelID(OpenAI)
	assert.False(t, ok)
}
