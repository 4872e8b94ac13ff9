package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localrivet/distill/internal/errortypes"
)

// Scorer rates how central each sentence is to its document.
type Scorer struct {
	embedder Embedder
	logger   *slog.Logger
}

// NewScorer creates a Scorer over the given embedder.
func NewScorer(embedder Embedder, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{embedder: embedder, logger: logger}
}

// Score returns one centrality score per sentence. A sentence's raw score is
// the sum of its dot-product similarity with every sentence, itself
// included. Scores are divided by the largest raw score when that is
// positive; otherwise the raw scores are returned unchanged.
func (s *Scorer) Score(ctx context.Context, sentences []string) ([]float64, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	embeddings, err := s.embedder.CreateEmbeddings(ctx, sentences)
	if err != nil {
		return nil, errortypes.ExternalError(err, "failed to embed sentences").
			WithComponent(errortypes.ComponentScorer)
	}
	if len(embeddings) != len(sentences) {
		return nil, errortypes.InternalError(
			fmt.Errorf("embedder returned %d vectors for %d sentences", len(embeddings), len(sentences)),
			"embedding count mismatch",
		).WithComponent(errortypes.ComponentScorer)
	}

	scores := make([]float64, len(sentences))
	for i := range embeddings {
		// Similarity is symmetric, so each pair is computed once.
		for j := i; j < len(embeddings); j++ {
			sim, err := Dot(embeddings[i], embeddings[j])
			if err != nil {
				return nil, errortypes.InternalError(err, "failed to compare sentence embeddings").
					WithComponent(errortypes.ComponentScorer)
			}
			scores[i] += sim
			if j != i {
				scores[j] += sim
			}
		}
	}

	maxScore := scores[0]
	for _, sc := range scores[1:] {
		maxScore = max(maxScore, sc)
	}
	if maxScore <= 0 {
		s.logger.Debug("Sentence scores not normalized", "max_score", maxScore, "sentences", len(sentences))
		return scores, nil
	}

	for i := range scores {
		scores[i] /= maxScore
	}
	return scores, nil
}
