package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/localrivet/distill/internal/errortypes"
)

// DefaultLocalBaseURL is where the local model server is expected.
const DefaultLocalBaseURL = "http://127.0.0.1:8080"

// LocalGenerator calls a sequence-to-sequence model behind an inference
// server that speaks the Hugging Face inference protocol:
// POST {base}/models/{model_id}.
type LocalGenerator struct {
	name       string
	modelID    string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type localRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters localParameters `json:"parameters"`
}

type localParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type localOutput struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

type localError struct {
	Error string `json:"error"`
}

// NewLocalGenerator creates a generator for a local engine. apiKey may be
// empty for servers without authentication.
func NewLocalGenerator(name, baseURL, apiKey string, httpClient *http.Client) (*LocalGenerator, error) {
	modelID, ok := ModelID(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a local engine", ErrUnknownEngine, name)
	}
	if baseURL == "" {
		baseURL = DefaultLocalBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &LocalGenerator{
		name:       name,
		modelID:    modelID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

// Name returns the engine name
func (g *LocalGenerator) Name() string {
	return g.name
}

// Generate implements Generator for local models.
func (g *LocalGenerator) Generate(ctx context.Context, text string, b Bounds) (string, error) {
	summary, err := g.generate(ctx, text, b)
	if err != nil {
		return "", errortypes.GenerationError(g.name, err).WithField("model_id", g.modelID)
	}
	return summary, nil
}

func (g *LocalGenerator) generate(ctx context.Context, text string, b Bounds) (string, error) {
	reqJSON, err := json.Marshal(localRequest{
		Inputs: text,
		Parameters: localParameters{
			MaxLength: b.MaxLength,
			MinLength: b.MinLength,
			DoSample:  false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	url := g.baseURL + "/models/" + g.modelID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request to model server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr localError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("model server error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("model server returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var outputs []localOutput
	if err := json.Unmarshal(respBody, &outputs); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(outputs) == 0 {
		return "", ErrEmptyOutput
	}

	summary := outputs[0].SummaryText
	if summary == "" {
		summary = outputs[0].GeneratedText
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrEmptyOutput
	}

	return summary, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
