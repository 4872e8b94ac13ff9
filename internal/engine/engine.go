// Package engine contains the abstractive generation engines: local
// sequence-to-sequence models served over HTTP and the remote OpenAI and
// Cohere providers, plus the chunk-and-recombine wrapper for long inputs.
package engine

import (
	"context"
	"errors"
	"time"
)

// Engine names.
const (
	Bart    = "bart"
	T5      = "t5"
	Pegasus = "pegasus"
	OpenAI  = "openai"
	Cohere  = "cohere"
)

const (
	// DefaultTimeout bounds a single HTTP call to an engine.
	DefaultTimeout = 60 * time.Second

	// DefaultChunkThreshold is the input length, in characters, above which
	// text is chunked before generation.
	DefaultChunkThreshold = 1024

	// DefaultMaxRetries is the number of retries after a failed call.
	DefaultMaxRetries = 2

	// DefaultRetryDelay is multiplied by the attempt number between retries.
	DefaultRetryDelay = time.Second

	// remoteTemperature keeps remote provider output close to deterministic.
	remoteTemperature = 0.3
)

// Errors
var (
	ErrMissingAPIKey = errors.New("API key not configured")
	ErrUnknownEngine = errors.New("unknown engine")
	ErrEmptyOutput   = errors.New("engine returned empty output")
)

// Bounds are the advisory length limits passed to a generator. Lengths are
// in words.
type Bounds struct {
	MaxLength    int
	MinLength    int
	MaxSentences int
}

// Generator produces an abstractive paraphrase of text.
type Generator interface {
	// Generate returns a summary of text within the advisory bounds.
	Generate(ctx context.Context, text string, b Bounds) (string, error)

	// Name returns the engine name
	Name() string
}

// Names lists every engine in catalogue order.
func Names() []string {
	return []string{Bart, T5, Pegasus, OpenAI, Cohere}
}

// IsKnown reports whether name is a supported engine.
func IsKnown(name string) bool {
	switch name {
	case Bart, T5, Pegasus, OpenAI, Cohere:
		return true
	}
	return false
}

// IsRemote reports whether name is a remote provider. Remote providers
// summarize in one pass and bypass method selection.
func IsRemote(name string) bool {
	return name == OpenAI || name == Cohere
}

// localModels maps local engine names to the model ids they serve.
var localModels = map[string]string{
	Bart:    "facebook/bart-large-cnn",
	T5:      "t5-base",
	Pegasus: "google/pegasus-cnn_dailymail",
}

// ModelID returns the model id served for a local engine.
func ModelID(name string) (string, bool) {
	id, ok := localModels[name]
	return id, ok
}
