package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/distill/internal/errortypes"
)

// tableEmbedder returns fixed vectors keyed by text.
type tableEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e *tableEmbedder) Initialize() error { return nil }

func (e *tableEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vectors[t]
	}
	return out, nil
}

func TestScorerScore(t *testing.T) {
	emb := &tableEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {1, 0},
		"c": {0, 1},
	}}
	scorer := NewScorer(emb, nil)

	scores, err := scorer.Score(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	// Row sums are 2, 2, 1.
	assert.InDeltaSlice(t, []float64{1, 1, 0.5}, scores, 1e-9)
}

func TestScorerMaxIsOne(t *testing.T) {
	scorer := NewScorer(NewHashingEmbedder(64), nil)
	sentences := []string{
		"The council approved the new budget.",
		"The budget includes funding for schools.",
		"Weather was sunny on Tuesday.",
		"School funding rose by ten percent in the budget.",
	}

	scores, err := scorer.Score(context.Background(), sentences)
	require.NoError(t, err)
	require.Len(t, scores, len(sentences))

	maxScore := scores[0]
	for _, s := range scores {
		maxScore = max(maxScore, s)
	}
	assert.InDelta(t, 1.0, maxScore, 1e-9)

	again, err := scorer.Score(context.Background(), sentences)
	require.NoError(t, err)
	assert.Equal(t, scores, again)
}

func TestScorerZeroVectors(t *testing.T) {
	emb := &tableEmbedder{vectors: map[string][]float32{
		"x": {0, 0},
		"y": {0, 0},
	}}

	scores, err := NewScorer(emb, nil).Score(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, scores)
}

func TestScorerEmpty(t *testing.T) {
	scores, err := NewScorer(NewHashingEmbedder(8), nil).Score(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestScorerEmbedderFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	_, err := NewScorer(&tableEmbedder{err: boom}, nil).Score(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var appErr *errortypes.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errortypes.ComponentScorer, appErr.Component)
}

func TestScorerDimensionMismatch(t *testing.T) {
	emb := &tableEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {1, 0, 0},
	}}

	_, err := NewScorer(emb, nil).Score(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, errortypes.ErrorTypeInternal, errortypes.TypeOf(err))
}
