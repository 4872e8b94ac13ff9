package summarizer

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/localrivet/distill/internal/textproc"
	"github.com/localrivet/distill/internal/vector"
)

// Selector picks the most central sentences of a document.
type Selector struct {
	segmenter *textproc.Segmenter
	scorer    *vector.Scorer
	logger    *slog.Logger
}

// NewSelector creates a Selector.
func NewSelector(segmenter *textproc.Segmenter, scorer *vector.Scorer, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{segmenter: segmenter, scorer: scorer, logger: logger}
}

// Select returns the maxSentences most central sentences of text in
// document order. Text with no more than maxSentences sentences is returned
// unchanged.
func (s *Selector) Select(ctx context.Context, text string, maxSentences int) (string, error) {
	return s.selectSentences(ctx, text, maxSentences, 0)
}

// SelectWithin is Select with a word budget: sentences are taken in score
// order while the total stays within maxWords, and the top sentence is
// always kept. A non-positive maxWords means no budget.
func (s *Selector) SelectWithin(ctx context.Context, text string, maxSentences, maxWords int) (string, error) {
	return s.selectSentences(ctx, text, maxSentences, maxWords)
}

func (s *Selector) selectSentences(ctx context.Context, text string, maxSentences, maxWords int) (string, error) {
	sentences, err := s.segmenter.Split(text)
	if err != nil {
		return "", err
	}
	if len(sentences) <= maxSentences {
		return text, nil
	}

	scores, err := s.scorer.Score(ctx, sentences)
	if err != nil {
		return "", err
	}

	ranked := make([]int, len(sentences))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scores[ranked[a]] > scores[ranked[b]]
	})

	picked := ranked[:maxSentences]
	if maxWords > 0 {
		picked = withinBudget(sentences, picked, maxWords)
	}
	picked = slices.Clone(picked)
	slices.Sort(picked)

	s.logger.Debug("Selected sentences",
		"total", len(sentences),
		"selected", len(picked),
		"max_words", maxWords)

	selected := make([]string, len(picked))
	for i, idx := range picked {
		selected[i] = sentences[idx]
	}
	return joinSentences(selected), nil
}

// withinBudget keeps ranked sentences while their word count fits maxWords.
func withinBudget(sentences []string, ranked []int, maxWords int) []int {
	kept := make([]int, 0, len(ranked))
	words := 0
	for _, idx := range ranked {
		n := textproc.WordCount(sentences[idx])
		if len(kept) > 0 && words+n > maxWords {
			continue
		}
		kept = append(kept, idx)
		words += n
	}
	return kept
}

// joinSentences renders sentences with one terminal mark each. Sentences
// ending in "." are joined with ". "; "!" and "?" keep their mark. The
// result always ends in terminal punctuation.
func joinSentences(sentences []string) string {
	var sb strings.Builder
	for i, sentence := range sentences {
		sentence = strings.TrimSuffix(strings.TrimSpace(sentence), ".")
		if i > 0 {
			prev := sb.String()
			if !strings.HasSuffix(prev, "!") && !strings.HasSuffix(prev, "?") {
				sb.WriteString(".")
			}
			sb.WriteString(" ")
		}
		sb.WriteString(sentence)
	}

	out := sb.String()
	if out != "" && !strings.HasSuffix(out, ".") && !strings.HasSuffix(out, "!") && !strings.HasSuffix(out, "?") {
		out += "."
	}
	return out
}
