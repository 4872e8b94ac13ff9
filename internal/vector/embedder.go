// Package vector provides text embedding and the sentence centrality scorer
// used by extractive summarization.
package vector

import (
	"context"
	"fmt"
	"strings"
)

const (
	// DefaultEmbeddingDimensions defines the size of vectors produced by the
	// hashing embedder. It matches the MiniLM sentence models.
	DefaultEmbeddingDimensions = 384

	// DefaultBatchSize defines how many texts are sent to a remote embedding
	// API in a single request.
	DefaultBatchSize = 100
)

// Embedding providers.
const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
)

// Embedder defines the interface for creating vector embeddings from text.
type Embedder interface {
	// CreateEmbeddings converts each text into a vector. The result has one
	// vector per input, in input order.
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// Initialize sets up the embedder with any required configuration.
	Initialize() error
}

// Options selects and configures an embedder.
type Options struct {
	Provider   string
	Dimensions int
	APIKey     string
	Model      string
	BaseURL    string
}

// New creates the embedder named by opts.Provider and initializes it.
func New(opts Options) (Embedder, error) {
	var e Embedder
	switch strings.ToLower(opts.Provider) {
	case "", ProviderHashing:
		e = NewHashingEmbedder(opts.Dimensions)
	case ProviderOpenAI:
		oe, err := NewOpenAIEmbedder(opts.APIKey, opts.Model, opts.Dimensions, opts.BaseURL)
		if err != nil {
			return nil, err
		}
		e = oe
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", opts.Provider)
	}

	if err := e.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s embedder: %w", opts.Provider, err)
	}
	return e, nil
}
