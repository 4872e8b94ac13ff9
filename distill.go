// Package distill summarizes documents with extractive, abstractive and
// hybrid strategies over local and remote generation engines.
package distill

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/localrivet/distill/internal/config"
	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/server"
	"github.com/localrivet/distill/internal/summarizer"
	"github.com/localrivet/distill/internal/telemetry"
	"github.com/localrivet/distill/internal/textproc"
	"github.com/localrivet/distill/internal/tools"
	"github.com/localrivet/distill/internal/util"
	"github.com/localrivet/distill/internal/vector"
)

// Config represents the configuration for the distill service.
type Config = config.Config

// Service represents the distill summarization service.
type Service struct {
	config     *config.Config
	components *Components
	toolServer *server.SummaryToolServer
	logger     *slog.Logger
}

// ServiceOptions defines the options for creating a new Service.
type ServiceOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.

	// Metrics is shared with an exporter when set.
	Metrics *telemetry.MetricsCollector
}

// Components are the process-wide handles the service is built from.
type Components struct {
	Segmenter *textproc.Segmenter
	Tokens    *textproc.TokenCounter
	Embedder  vector.Embedder
	Scorer    *vector.Scorer
	Registry  *engine.Registry
	Pipeline  *summarizer.Pipeline
	Metrics   *telemetry.MetricsCollector
}

// NewService creates a new Service with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
func NewService(opts ServiceOptions) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for service initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for service initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, err
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	components, err := CreateComponents(cfg, logger, opts.Metrics)
	if err != nil {
		logger.Error("Failed to create components during service initialization", "error", err)
		return nil, err
	}

	toolServer := server.NewSummaryToolServer(components.Pipeline, components.Segmenter, components.Tokens, logger)
	if err := toolServer.Initialize(); err != nil {
		logger.Error("Failed to initialize MCP tool server", "error", err)
		return nil, err
	}

	logger.Info("distill service initialized", "default_engine", cfg.Engine.Default)
	return &Service{
		config:     cfg,
		components: components,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the distill service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// SaveConfig writes the configuration as JSON to path.
func SaveConfig(cfg *Config, path string) error {
	return cfg.SaveToFile(path)
}

// CreateComponents builds the segmenter, scorer, engines and pipeline
// described by cfg without creating a service. metrics may be nil.
func CreateComponents(cfg *Config, logger *slog.Logger, metrics *telemetry.MetricsCollector) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}

	tokens, err := textproc.NewTokenCounter()
	if err != nil {
		// Statistics fall back to estimates; token chunking is unavailable.
		logger.Warn("Token counter unavailable", "error", err)
		tokens = nil
	}

	var segOpts []textproc.SegmenterOption
	if cfg.ChunkUnit() == textproc.ChunkUnitTokens {
		if tokens == nil {
			return nil, errortypes.ConfigError(err, "token chunking requires the cl100k_base encoding")
		}
		segOpts = append(segOpts, textproc.WithTokenCounter(tokens))
	}

	logger.Info("Initializing sentence segmenter", "chunk_unit", string(cfg.ChunkUnit()))
	segmenter, err := textproc.NewSegmenter(segOpts...)
	if err != nil {
		return nil, errortypes.SegmentationError(err, "failed to load sentence tokenizer")
	}

	embedderOpts := cfg.EmbedderOptions()
	logger.Info("Initializing embedder", "provider", embedderOpts.Provider, "dimensions", embedderOpts.Dimensions)
	embedder, err := vector.New(embedderOpts)
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to initialize embedder")
	}

	registry, err := engine.NewRegistry(cfg.EngineConfig(), segmenter, metrics, logger)
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to initialize generation engines")
	}

	opts := cfg.PipelineOptions()
	opts.Metrics = metrics
	opts.Logger = logger

	scorer := vector.NewScorer(embedder, logger)
	return &Components{
		Segmenter: segmenter,
		Tokens:    tokens,
		Embedder:  embedder,
		Scorer:    scorer,
		Registry:  registry,
		Pipeline:  summarizer.NewPipeline(registry, segmenter, scorer, opts),
		Metrics:   metrics,
	}, nil
}

// Start serves the MCP tools over stdio. It blocks until the transport
// closes.
func (s *Service) Start() error {
	s.logger.Info("Starting distill MCP service")
	return s.toolServer.Start()
}

// Stop stops the MCP tool server.
func (s *Service) Stop() error {
	s.logger.Info("Stopping distill service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}
	return nil
}

// Summarize summarizes one document. The text must be at least the
// configured minimum length.
func (s *Service) Summarize(ctx context.Context, req summarizer.Request) (summarizer.Result, error) {
	if err := summarizer.ValidateText(req.Text, s.components.Pipeline.MinTextLength()); err != nil {
		return summarizer.Result{}, err
	}

	s.logger.Debug("Summarizing text", "document", util.Fingerprint(req.Text), "method", string(req.Method))
	return s.components.Pipeline.Run(ctx, req)
}

// SummarizeBatch summarizes every document with the same parameters. Any
// failure aborts the whole batch.
func (s *Service) SummarizeBatch(ctx context.Context, req summarizer.BatchRequest) (summarizer.BatchResult, error) {
	return s.components.Pipeline.RunBatch(ctx, req)
}

// Analyze returns text statistics and the advisory language.
func (s *Service) Analyze(text string) (textproc.TextStatistics, error) {
	resp, err := s.toolServer.Analyze(tools.AnalyzeTextRequest{Text: text})
	if err != nil {
		return textproc.TextStatistics{}, err
	}
	return *resp.Statistics, nil
}

// Models returns the engine and method catalogue.
func (s *Service) Models() summarizer.CatalogInfo {
	return summarizer.Catalog()
}

// Health reports engine availability and call statistics.
func (s *Service) Health() (*summarizer.HealthReport, error) {
	return summarizer.CreateHealthReport(s.components.Registry, s.components.Metrics)
}

// HTTPServer returns an HTTP JSON API over the same operations. metrics,
// when non-nil, is served at /metrics.
func (s *Service) HTTPServer(addr string, metrics http.Handler) (*server.HTTPServer, error) {
	hs := server.NewHTTPServer(addr, s.toolServer, metrics, s.logger)
	if err := hs.Initialize(); err != nil {
		return nil, err
	}
	return hs, nil
}

// ToolServer returns the MCP tool server, for embedding its tools into
// another MCP server.
func (s *Service) ToolServer() *server.SummaryToolServer {
	return s.toolServer
}

// Pipeline returns the summarization pipeline.
func (s *Service) Pipeline() *summarizer.Pipeline {
	return s.components.Pipeline
}

// Metrics returns the metrics collector.
func (s *Service) Metrics() *telemetry.MetricsCollector {
	return s.components.Metrics
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}
