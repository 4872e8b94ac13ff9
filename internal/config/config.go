// Package config loads distill settings from defaults, a JSON config file
// and DISTILL_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/localrivet/configurator"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/logger"
	"github.com/localrivet/distill/internal/summarizer"
	"github.com/localrivet/distill/internal/textproc"
	"github.com/localrivet/distill/internal/vector"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the distill configuration
type Config struct {
	// Engine configures the generation engines.
	Engine struct {
		// Default is the engine used when a request names none.
		Default string `json:"default" env:"ENGINE" validate:"required"`

		// MaxRetries is how often a failed engine call is retried.
		MaxRetries int `json:"max_retries" env:"ENGINE_MAX_RETRIES"`

		// RetryDelayMs is the base delay between retries in milliseconds.
		RetryDelayMs int `json:"retry_delay_ms" env:"ENGINE_RETRY_DELAY_MS"`

		// Local configures the inference server behind bart, t5 and pegasus.
		Local struct {
			BaseURL        string `json:"base_url" env:"LOCAL_BASE_URL"`
			APIKey         string `json:"api_key" env:"LOCAL_API_KEY"`
			TimeoutSeconds int    `json:"timeout_seconds" env:"LOCAL_TIMEOUT_SECONDS" validate:"min:1"`
		} `json:"local"`

		OpenAI struct {
			APIKey  string `json:"api_key" env:"OPENAI_API_KEY"`
			Model   string `json:"model" env:"OPENAI_MODEL"`
			BaseURL string `json:"base_url" env:"OPENAI_BASE_URL"`
		} `json:"openai"`

		Cohere struct {
			APIKey  string `json:"api_key" env:"COHERE_API_KEY"`
			Model   string `json:"model" env:"COHERE_MODEL"`
			BaseURL string `json:"base_url" env:"COHERE_BASE_URL"`
		} `json:"cohere"`
	} `json:"engine"`

	// Embedder contains embedding-related configuration.
	Embedder struct {
		// Provider is the name of the embedding provider to use ("hashing", "openai").
		Provider string `json:"provider" env:"EMBEDDER_PROVIDER"`

		// Dimensions is the number of dimensions for the embeddings.
		Dimensions int `json:"dimensions" env:"EMBEDDER_DIMENSIONS" validate:"min:1"`

		// ApiKey is the API key for the embedding provider.
		ApiKey string `json:"api_key" env:"EMBEDDER_API_KEY"`

		// Model is the remote embedding model.
		Model string `json:"model" env:"EMBEDDER_MODEL"`

		BaseURL string `json:"base_url" env:"EMBEDDER_BASE_URL"`
	} `json:"embedder"`

	// Pipeline contains chunking and batch settings.
	Pipeline struct {
		ChunkThreshold   int    `json:"chunk_threshold" env:"CHUNK_THRESHOLD" validate:"min:1"`
		ChunkUnit        string `json:"chunk_unit" env:"CHUNK_UNIT"`
		BatchLimit       int    `json:"batch_limit" env:"BATCH_LIMIT" validate:"min:1"`
		BatchConcurrency int    `json:"batch_concurrency" env:"BATCH_CONCURRENCY" validate:"min:1"`
		MinTextLength    int    `json:"min_text_length" env:"MIN_TEXT_LENGTH" validate:"min:1"`
	} `json:"pipeline"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Metrics configures the Prometheus listener. An empty address disables it.
	Metrics struct {
		Addr string `json:"addr" env:"METRICS_ADDR"`
	} `json:"metrics"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".distillconfig"
	DefaultEnvPrefix      = "DISTILL"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Engine.Default = summarizer.DefaultEngine
	config.Engine.MaxRetries = engine.DefaultMaxRetries
	config.Engine.RetryDelayMs = int(engine.DefaultRetryDelay / time.Millisecond)
	config.Engine.Local.BaseURL = engine.DefaultLocalBaseURL
	config.Engine.Local.TimeoutSeconds = int(engine.DefaultTimeout / time.Second)
	config.Engine.OpenAI.Model = engine.DefaultOpenAIModel
	config.Engine.Cohere.Model = engine.DefaultCohereModel
	config.Engine.Cohere.BaseURL = engine.DefaultCohereBaseURL
	config.Embedder.Provider = vector.ProviderHashing
	config.Embedder.Dimensions = vector.DefaultEmbeddingDimensions
	config.Pipeline.ChunkThreshold = engine.DefaultChunkThreshold
	config.Pipeline.ChunkUnit = string(textproc.ChunkUnitRunes)
	config.Pipeline.BatchLimit = summarizer.DefaultBatchLimit
	config.Pipeline.BatchConcurrency = summarizer.DefaultBatchConcurrency
	config.Pipeline.MinTextLength = summarizer.DefaultMinTextLength
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path. A missing
// file is not an error: defaults and the environment still apply.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Config loading logs to stderr; stdout carries the MCP transport.
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg := NewConfig()

	if configPath == "" {
		configPath = DefaultConfigFilename
	}
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		stdLogger.Info("Loading configuration", "path", configPath)
		config = config.WithProvider(configurator.NewFileProvider(configPath))
	} else {
		stdLogger.Debug("Config file not found, using defaults and environment", "path", configPath)
	}

	config = config.
		WithProvider(configurator.NewEnvProvider(DefaultEnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	if err := config.Load(context.Background(), cfg); err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration").WithField("path", configPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// Validate checks cross-field settings the struct tags cannot express.
func (c *Config) Validate() error {
	var problems []string
	if !engine.IsKnown(c.Engine.Default) {
		problems = append(problems, fmt.Sprintf("engine.default %q is not a known engine", c.Engine.Default))
	}
	if c.Engine.MaxRetries < 0 {
		problems = append(problems, "engine.max_retries must not be negative")
	}
	if c.Pipeline.BatchLimit > summarizer.DefaultBatchLimit {
		problems = append(problems, fmt.Sprintf("pipeline.batch_limit must not exceed %d", summarizer.DefaultBatchLimit))
	}
	if _, err := textproc.ParseChunkUnit(c.Pipeline.ChunkUnit); err != nil {
		problems = append(problems, err.Error())
	}
	switch c.Embedder.Provider {
	case "", vector.ProviderHashing, vector.ProviderOpenAI:
	default:
		problems = append(problems, fmt.Sprintf("embedder.provider %q is not supported", c.Embedder.Provider))
	}

	if len(problems) > 0 {
		return errortypes.ConfigError(errors.New(strings.Join(problems, "; ")), "invalid configuration")
	}
	return nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// EngineConfig returns the settings for engine.NewRegistry.
func (c *Config) EngineConfig() engine.Config {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return engine.Config{
		LocalBaseURL:   c.Engine.Local.BaseURL,
		LocalAPIKey:    c.Engine.Local.APIKey,
		Timeout:        time.Duration(c.Engine.Local.TimeoutSeconds) * time.Second,
		OpenAIAPIKey:   c.Engine.OpenAI.APIKey,
		OpenAIModel:    c.Engine.OpenAI.Model,
		OpenAIBaseURL:  c.Engine.OpenAI.BaseURL,
		CohereAPIKey:   c.Engine.Cohere.APIKey,
		CohereModel:    c.Engine.Cohere.Model,
		CohereBaseURL:  c.Engine.Cohere.BaseURL,
		MaxRetries:     c.Engine.MaxRetries,
		RetryDelay:     time.Duration(c.Engine.RetryDelayMs) * time.Millisecond,
		ChunkThreshold: c.Pipeline.ChunkThreshold,
	}
}

// EmbedderOptions returns the settings for vector.New.
func (c *Config) EmbedderOptions() vector.Options {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return vector.Options{
		Provider:   c.Embedder.Provider,
		Dimensions: c.Embedder.Dimensions,
		APIKey:     c.Embedder.ApiKey,
		Model:      c.Embedder.Model,
		BaseURL:    c.Embedder.BaseURL,
	}
}

// PipelineOptions returns batch settings for summarizer.NewPipeline. The
// caller supplies metrics and logger.
func (c *Config) PipelineOptions() summarizer.Options {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return summarizer.Options{
		DefaultEngine:    c.Engine.Default,
		BatchLimit:       c.Pipeline.BatchLimit,
		BatchConcurrency: c.Pipeline.BatchConcurrency,
		MinTextLength:    c.Pipeline.MinTextLength,
	}
}

// ChunkUnit returns the configured chunk length unit.
func (c *Config) ChunkUnit() textproc.ChunkUnit {
	unit, err := textproc.ParseChunkUnit(c.Pipeline.ChunkUnit)
	if err != nil {
		return textproc.ChunkUnitRunes
	}
	return unit
}

// LoggerConfig returns the process logger settings for logger.New.
func (c *Config) LoggerConfig() *logger.Config {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(c.Logging.Level)
	lc.Format = logger.ParseFormat(c.Logging.Format)
	return lc
}
