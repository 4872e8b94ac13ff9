package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockResponseConfig holds configuration for mock API responses
type MockResponseConfig struct {
	StatusCode   int
	ResponseBody interface{}
	Headers      map[string]string
}

// MockServer creates a test server that returns the configured response
func MockServer(t *testing.T, config MockResponseConfig) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range config.Headers {
			w.Header().Set(k, v)
		}

		// Always set content type if not explicitly set
		if _, exists := config.Headers["Content-Type"]; !exists {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(config.StatusCode)

		if config.ResponseBody != nil {
			var respBytes []byte
			var err error

			// Handle string or []byte directly
			switch body := config.ResponseBody.(type) {
			case string:
				respBytes = []byte(body)
			case []byte:
				respBytes = body
			default:
				respBytes, err = json.Marshal(body)
				if err != nil {
					t.Errorf("Failed to marshal mock response: %v", err)
					return
				}
			}

			if _, err := w.Write(respBytes); err != nil {
				t.Errorf("Failed to write response body: %v", err)
			}
		}
	}))
}

// StaticGenerator is a Generator that always returns the same output or error
type StaticGenerator struct {
	name   string
	output string
	err    error
}

// NewStaticGenerator creates a new StaticGenerator
func NewStaticGenerator(name, output string, err error) *StaticGenerator {
	return &StaticGenerator{name: name, output: output, err: err}
}

// Name returns the engine name
func (g *StaticGenerator) Name() string {
	return g.name
}

// Generate returns the configured output or error
func (g *StaticGenerator) Generate(_ context.Context, _ string, _ Bounds) (string, error) {
	return g.output, g.err
}

// CountingGenerator records every input it receives and answers with a
// function of that input. It is safe for concurrent use.
type CountingGenerator struct {
	name    string
	respond func(text string) string

	mu     sync.Mutex
	inputs []string
	bounds []Bounds
}

// NewCountingGenerator creates a CountingGenerator. A nil respond returns
// the first sentence-sized prefix of the input.
func NewCountingGenerator(name string, respond func(text string) string) *CountingGenerator {
	if respond == nil {
		respond = func(text string) string {
			if i := strings.Index(text, "."); i >= 0 {
				return text[:i+1]
			}
			return text
		}
	}
	return &CountingGenerator{name: name, respond: respond}
}

// Name returns the engine name
func (g *CountingGenerator) Name() string {
	return g.name
}

// Generate records the call and returns respond(text)
func (g *CountingGenerator) Generate(_ context.Context, text string, b Bounds) (string, error) {
	g.mu.Lock()
	g.inputs = append(g.inputs, text)
	g.bounds = append(g.bounds, b)
	g.mu.Unlock()
	return g.respond(text), nil
}

// Calls returns the number of Generate calls
func (g *CountingGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inputs)
}

// Inputs returns a copy of every text passed to Generate
func (g *CountingGenerator) Inputs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.inputs...)
}

// LastBounds returns the bounds of the most recent call
func (g *CountingGenerator) LastBounds() Bounds {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.bounds) == 0 {
		return Bounds{}
	}
	return g.bounds[len(g.bounds)-1]
}

// FailingGenerator fails the first failures calls, then succeeds with output.
// A negative failures count fails forever.
type FailingGenerator struct {
	name     string
	output   string
	err      error
	failures int

	mu    sync.Mutex
	calls int
}

// NewFailingGenerator creates a new FailingGenerator
func NewFailingGenerator(name string, failures int, err error, output string) *FailingGenerator {
	return &FailingGenerator{name: name, failures: failures, err: err, output: output}
}

// Name returns the engine name
func (g *FailingGenerator) Name() string {
	return g.name
}

// Generate fails until the configured number of failures has been reached
func (g *FailingGenerator) Generate(_ context.Context, _ string, _ Bounds) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.failures < 0 || g.calls <= g.failures {
		return "", g.err
	}
	return g.output, nil
}

// Calls returns the number of Generate calls
func (g *FailingGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
