package summarizer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/telemetry"
	"github.com/localrivet/distill/internal/textproc"
	"github.com/localrivet/distill/internal/vector"
)

// newsSentences are six sentences, three of which share the budget topic.
var newsSentences = []string{
	"The city council approved the annual budget on Monday.",
	"Heavy rain flooded several streets downtown.",
	"The budget increases school funding by ten percent.",
	"A local bakery won a regional award.",
	"Council members debated the budget for three hours.",
	"The museum will reopen next spring.",
}

var newsText = strings.Join(newsSentences, " ")

// tableEmbedder returns fixed vectors keyed by sentence; unknown sentences
// get the zero vector.
type tableEmbedder struct {
	vectors map[string][]float32
	dims    int
}

func (e *tableEmbedder) Initialize() error { return nil }

func (e *tableEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = make([]float32, e.dims)
		}
	}
	return out, nil
}

// newsEmbedder makes the budget sentences mutually similar and every other
// sentence orthogonal to all the rest.
func newsEmbedder() *tableEmbedder {
	e := &tableEmbedder{vectors: map[string][]float32{}, dims: 4}
	e.vectors[newsSentences[0]] = []float32{1, 0, 0, 0}
	e.vectors[newsSentences[2]] = []float32{1, 0, 0, 0}
	e.vectors[newsSentences[4]] = []float32{1, 0, 0, 0}
	e.vectors[newsSentences[1]] = []float32{0, 1, 0, 0}
	e.vectors[newsSentences[3]] = []float32{0, 0, 1, 0}
	e.vectors[newsSentences[5]] = []float32{0, 0, 0, 1}
	return e
}

func newSegmenter(t *testing.T) *textproc.Segmenter {
	t.Helper()
	s, err := textproc.NewSegmenter()
	require.NoError(t, err)
	return s
}

func newSelector(t *testing.T, embedder vector.Embedder) *Selector {
	t.Helper()
	return NewSelector(newSegmenter(t), vector.NewScorer(embedder, nil), nil)
}

type testPipeline struct {
	*Pipeline
	metrics *telemetry.MetricsCollector
}

func newTestPipeline(t *testing.T, embedder vector.Embedder, gens ...engine.Generator) testPipeline {
	t.Helper()
	if embedder == nil {
		embedder = vector.NewHashingEmbedder(64)
	}
	seg := newSegmenter(t)
	metrics := telemetry.NewMetricsCollector()
	registry := engine.NewStaticRegistry(seg, engine.DefaultChunkThreshold, metrics, nil, gens...)
	p := NewPipeline(registry, seg, vector.NewScorer(embedder, nil), Options{})
	return testPipeline{Pipeline: p, metrics: metrics}
}

func indexOf(sentences []string, s string) int {
	for i, candidate := range sentences {
		if candidate == s {
			return i
		}
	}
	return -1
}
