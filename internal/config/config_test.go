package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/logger"
	"github.com/localrivet/distill/internal/summarizer"
	"github.com/localrivet/distill/internal/textproc"
	"github.com/localrivet/distill/internal/vector"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, engine.Bart, cfg.Engine.Default)
	assert.Equal(t, vector.ProviderHashing, cfg.Embedder.Provider)
	assert.Equal(t, textproc.ChunkUnitRunes, cfg.ChunkUnit())
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown engine", func(c *Config) { c.Engine.Default = "gpt-9" }},
		{"negative retries", func(c *Config) { c.Engine.MaxRetries = -1 }},
		{"batch limit above ten", func(c *Config) { c.Pipeline.BatchLimit = summarizer.DefaultBatchLimit + 1 }},
		{"bad chunk unit", func(c *Config) { c.Pipeline.ChunkUnit = "paragraphs" }},
		{"bad embedder", func(c *Config) { c.Embedder.Provider = "word2vec" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errortypes.IsConfigError(err))
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Engine.OpenAI.APIKey = "sk-test"
	cfg.Engine.Local.TimeoutSeconds = 5
	cfg.Engine.RetryDelayMs = 250
	cfg.Pipeline.ChunkThreshold = 512

	ec := cfg.EngineConfig()
	assert.Equal(t, "sk-test", ec.OpenAIAPIKey)
	assert.Equal(t, 5*time.Second, ec.Timeout)
	assert.Equal(t, 250*time.Millisecond, ec.RetryDelay)
	assert.Equal(t, 512, ec.ChunkThreshold)
	assert.Equal(t, engine.DefaultLocalBaseURL, ec.LocalBaseURL)
	assert.Equal(t, engine.DefaultCohereModel, ec.CohereModel)
}

func TestEmbedderAndPipelineOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Embedder.Provider = vector.ProviderOpenAI
	cfg.Embedder.Dimensions = 256
	cfg.Pipeline.BatchConcurrency = 2
	cfg.Engine.Default = "pegasus"

	eo := cfg.EmbedderOptions()
	assert.Equal(t, vector.ProviderOpenAI, eo.Provider)
	assert.Equal(t, 256, eo.Dimensions)

	po := cfg.PipelineOptions()
	assert.Equal(t, "pegasus", po.DefaultEngine)
	assert.Equal(t, summarizer.DefaultBatchLimit, po.BatchLimit)
	assert.Equal(t, 2, po.BatchConcurrency)
	assert.Equal(t, summarizer.DefaultMinTextLength, po.MinTextLength)
}

func TestChunkUnitFallsBackToRunes(t *testing.T) {
	cfg := NewConfig()
	cfg.Pipeline.ChunkUnit = "tokens"
	assert.Equal(t, textproc.ChunkUnitTokens, cfg.ChunkUnit())

	cfg.Pipeline.ChunkUnit = "nonsense"
	assert.Equal(t, textproc.ChunkUnitRunes, cfg.ChunkUnit())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	cfg, err := LoadConfigWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, engine.Bart, cfg.Engine.Default)
	assert.Equal(t, summarizer.DefaultBatchLimit, cfg.Pipeline.BatchLimit)
	assert.Equal(t, path, cfg.GetConfigPath())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFilename)

	cfg := NewConfig()
	cfg.Engine.Default = engine.Pegasus
	cfg.Pipeline.BatchConcurrency = 3
	require.NoError(t, cfg.SaveToFile(path))
	assert.Equal(t, path, cfg.GetConfigPath())

	loaded, err := LoadConfigWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, engine.Pegasus, loaded.Engine.Default)
	assert.Equal(t, 3, loaded.Pipeline.BatchConcurrency)
}

func TestLoggerConfig(t *testing.T) {
	cfg := NewConfig()
	lc := cfg.LoggerConfig()
	assert.Equal(t, logger.INFO, lc.Level)
	assert.Equal(t, logger.TEXT, lc.Format)

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	lc = cfg.LoggerConfig()
	assert.Equal(t, logger.DEBUG, lc.Level)
	assert.Equal(t, logger.JSON, lc.Format)
	assert.Equal(t, "distill", lc.DefaultTags["service"])
}
