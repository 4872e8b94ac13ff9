package engine

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/localrivet/distill/internal/telemetry"
	"github.com/localrivet/distill/internal/textproc"
)

// Config holds the settings used to build every engine.
type Config struct {
	LocalBaseURL string
	LocalAPIKey  string
	Timeout      time.Duration

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	CohereAPIKey  string
	CohereModel   string
	CohereBaseURL string

	MaxRetries     int
	RetryDelay     time.Duration
	ChunkThreshold int
}

// Registry holds the process-wide engine handles. It is built once at
// startup and only read afterwards.
type Registry struct {
	generators map[string]Generator
	configured map[string]bool
	segmenter  *textproc.Segmenter
	threshold  int
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

// NewRegistry builds every engine from cfg. Local engines are wrapped with
// chunk-and-recombine; remote providers always receive the whole text.
func NewRegistry(cfg Config, segmenter *textproc.Segmenter, metrics *telemetry.MetricsCollector, logger *slog.Logger) (*Registry, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	r := newRegistry(segmenter, cfg.ChunkThreshold, metrics, logger)
	httpClient := &http.Client{Timeout: cfg.Timeout}

	for _, name := range []string{Bart, T5, Pegasus} {
		g, err := NewLocalGenerator(name, cfg.LocalBaseURL, cfg.LocalAPIKey, httpClient)
		if err != nil {
			return nil, err
		}
		r.add(g, cfg.MaxRetries, cfg.RetryDelay, true)
	}

	r.add(NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), cfg.MaxRetries, cfg.RetryDelay, cfg.OpenAIAPIKey != "")
	r.add(NewCohereGenerator(cfg.CohereAPIKey, cfg.CohereModel, cfg.CohereBaseURL, httpClient), cfg.MaxRetries, cfg.RetryDelay, cfg.CohereAPIKey != "")

	r.logger.Info("Generation engines initialized",
		"engines", len(r.generators),
		"openai_configured", r.configured[OpenAI],
		"cohere_configured", r.configured[Cohere],
		"chunk_threshold", r.threshold)

	return r, nil
}

// NewStaticRegistry builds a registry from ready-made generators without
// retries. Generators named after local engines are chunked.
func NewStaticRegistry(segmenter *textproc.Segmenter, threshold int, metrics *telemetry.MetricsCollector, logger *slog.Logger, gens ...Generator) *Registry {
	r := newRegistry(segmenter, threshold, metrics, logger)
	for _, g := range gens {
		r.add(g, -1, 0, true)
	}
	return r
}

func newRegistry(segmenter *textproc.Segmenter, threshold int, metrics *telemetry.MetricsCollector, logger *slog.Logger) *Registry {
	if threshold <= 0 {
		threshold = DefaultChunkThreshold
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		generators: make(map[string]Generator),
		configured: make(map[string]bool),
		segmenter:  segmenter,
		threshold:  threshold,
		metrics:    metrics,
		logger:     logger,
	}
}

func (r *Registry) add(g Generator, maxRetries int, retryDelay time.Duration, configured bool) {
	name := g.Name()

	var wrapped Generator = Instrument(g, r.metrics)
	if maxRetries > 0 {
		wrapped = NewRetrying(wrapped, maxRetries, retryDelay, r.metrics, r.logger)
	}
	if !IsRemote(name) {
		wrapped = NewChunked(wrapped, r.segmenter, r.threshold, r.metrics, r.logger)
	}

	r.generators[name] = wrapped
	r.configured[name] = configured
}

// Get returns the generator registered for name.
func (r *Registry) Get(name string) (Generator, error) {
	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}
	return g, nil
}

// Configured reports whether the engine has the credentials it needs.
func (r *Registry) Configured(name string) bool {
	return r.configured[name]
}

// Available lists registered engines in catalogue order.
func (r *Registry) Available() []string {
	var names []string
	for _, name := range Names() {
		if _, ok := r.generators[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Metrics returns the collector engines record into.
func (r *Registry) Metrics() *telemetry.MetricsCollector {
	return r.metrics
}
