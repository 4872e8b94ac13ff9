package vector

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingEmbedder embeds text as a feature-hashed bag of lowercase words.
// Texts sharing vocabulary get a positive dot product, which is what the
// centrality scorer needs. The same text always produces the same vector.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder creates a new HashingEmbedder with the specified dimensions.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &HashingEmbedder{
		dimensions: dimensions,
	}
}

// Initialize sets up the embedder with any required configuration.
func (e *HashingEmbedder) Initialize() error {
	return nil
}

// Dimensions returns the vector size.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// CreateEmbeddings embeds every text.
func (e *HashingEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.CreateEmbedding(text)
	}
	return out, nil
}

// CreateEmbedding embeds a single text. Text without words yields the zero
// vector.
func (e *HashingEmbedder) CreateEmbedding(text string) []float32 {
	embedding := make([]float32, e.dimensions)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	for _, w := range words {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum64()

		idx := int(sum % uint64(e.dimensions))
		// The top bit picks the sign so unrelated words cancel out on average.
		if sum>>63 == 1 {
			embedding[idx]--
		} else {
			embedding[idx]++
		}
	}

	normalizeEmbedding(embedding)
	return embedding
}

// normalizeEmbedding normalizes the embedding to have unit length.
// A zero vector is left unchanged.
func normalizeEmbedding(embedding []float32) {
	var sumSquares float64
	for _, val := range embedding {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}

	magnitude := float32(math.Sqrt(sumSquares))
	for i := range embedding {
		embedding[i] /= magnitude
	}
}
