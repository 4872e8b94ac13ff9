package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/summarizer"
	"github.com/localrivet/distill/internal/textproc"
)

func TestRequestFromFlags(t *testing.T) {
	var req summarizer.Request
	cmd := &cli.Command{
		Name:  "summarize",
		Flags: requestFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			req = requestFromFlags(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"summarize", "--method", "Extractive", "--model", "T5", "--max-sentences", "3"})
	require.NoError(t, err)

	assert.Equal(t, summarizer.MethodExtractive, req.Method)
	assert.Equal(t, "t5", req.Engine)
	assert.Equal(t, 3, req.MaxSentences)
	assert.Equal(t, summarizer.DefaultMaxLength, req.MaxLength)
	assert.Equal(t, summarizer.DefaultMinLength, req.MinLength)
	assert.Equal(t, summarizer.DefaultLanguage, req.Language)
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("From a file."), 0o644))

	text, err := readInput(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "From a file.", text)

	text, err = readInput("-", strings.NewReader("From stdin."))
	require.NoError(t, err)
	assert.Equal(t, "From stdin.", text)

	_, err = readInput("", nil)
	assert.True(t, errortypes.IsValidationError(err))

	_, err = readInput(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.True(t, errortypes.IsValidationError(err))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, summarizer.Result{Summary: "Short.", Engine: "bart"}))

	assert.Contains(t, buf.String(), `"summary": "Short."`)
	assert.Contains(t, buf.String(), `"model": "bart"`)
}

func TestRenderCatalog(t *testing.T) {
	var buf bytes.Buffer
	renderCatalog(&buf, summarizer.Catalog())

	out := buf.String()
	for _, name := range []string{"bart", "t5", "pegasus", "openai", "cohere", "hybrid"} {
		assert.Contains(t, out, name)
	}
}

func TestRenderStatistics(t *testing.T) {
	var buf bytes.Buffer
	renderStatistics(&buf, textproc.TextStatistics{WordCount: 12, SentenceCount: 2, Language: "english"})

	out := buf.String()
	assert.Contains(t, out, "Sentences")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "english")
}
