package textproc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/localrivet/distill/internal/errortypes"
)

// ErrInvalidUTF8 is returned (wrapped in a segmentation error) when the
// input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

// ChunkUnit selects how chunk length is measured.
type ChunkUnit string

const (
	// ChunkUnitRunes measures chunks in characters.
	ChunkUnitRunes ChunkUnit = "runes"
	// ChunkUnitTokens measures chunks in cl100k_base tokens.
	ChunkUnitTokens ChunkUnit = "tokens"
)

type sentenceTokenizer interface {
	Tokenize(text string) []*sentences.Sentence
}

// Segmenter splits text into sentences and groups sentences into chunks.
// It is built once and is safe for concurrent use.
type Segmenter struct {
	tokenizer sentenceTokenizer
	measure   func(string) int
	unit      ChunkUnit
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithTokenCounter measures chunk length in tokens instead of runes.
func WithTokenCounter(tc *TokenCounter) SegmenterOption {
	return func(s *Segmenter) {
		if tc == nil {
			return
		}
		s.measure = tc.CountTokens
		s.unit = ChunkUnitTokens
	}
}

// NewSegmenter loads the English Punkt model and returns a Segmenter.
func NewSegmenter(opts ...SegmenterOption) (*Segmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, errortypes.SegmentationError(err, "failed to load sentence tokenizer")
	}

	s := &Segmenter{
		tokenizer: tokenizer,
		measure:   RuneLength,
		unit:      ChunkUnitRunes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Unit reports the unit chunk lengths are measured in.
func (s *Segmenter) Unit() ChunkUnit {
	return s.unit
}

// Measure returns the length of text in the segmenter's chunk unit.
func (s *Segmenter) Measure(text string) int {
	return s.measure(text)
}

// Split breaks text into sentences in document order. Abbreviations and
// decimal numbers do not end a sentence. Empty or whitespace-only text
// yields no sentences.
func (s *Segmenter) Split(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, errortypes.SegmentationError(ErrInvalidUTF8, "failed to split sentences").
			WithField("bytes", len(text))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	tokens := s.tokenizer.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		sentence := strings.TrimSpace(tok.Text)
		if sentence != "" {
			out = append(out, sentence)
		}
	}
	return out, nil
}

// Chunk groups consecutive sentences into chunks of at most maxUnitLength
// units. Sentences inside a chunk are joined with a single space. A
// sentence longer than maxUnitLength forms a chunk of its own. A
// non-positive maxUnitLength puts every sentence in one chunk.
func (s *Segmenter) Chunk(sents []string, maxUnitLength int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, sentence := range sents {
		if sentence == "" {
			continue
		}
		if current.Len() == 0 {
			current.WriteString(sentence)
			continue
		}

		candidate := current.String() + " " + sentence
		if maxUnitLength <= 0 || s.measure(candidate) <= maxUnitLength {
			current.WriteString(" ")
			current.WriteString(sentence)
			continue
		}

		flush()
		current.WriteString(sentence)
	}
	flush()

	return chunks
}

// ChunkText splits text into sentences and chunks them.
func (s *Segmenter) ChunkText(text string, maxUnitLength int) ([]string, error) {
	sents, err := s.Split(text)
	if err != nil {
		return nil, err
	}
	return s.Chunk(sents, maxUnitLength), nil
}

// ParseChunkUnit converts a configuration value into a ChunkUnit.
func ParseChunkUnit(v string) (ChunkUnit, error) {
	switch ChunkUnit(strings.ToLower(strings.TrimSpace(v))) {
	case "", ChunkUnitRunes:
		return ChunkUnitRunes, nil
	case ChunkUnitTokens:
		return ChunkUnitTokens, nil
	default:
		return "", fmt.Errorf("unknown chunk unit %q", v)
	}
}
