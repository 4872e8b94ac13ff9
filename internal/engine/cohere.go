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

const (
	// DefaultCohereBaseURL is the Cohere API root.
	DefaultCohereBaseURL = "https://api.cohere.ai"

	// DefaultCohereModel is used when no model is configured.
	DefaultCohereModel = "command"
)

// CohereGenerator summarizes with the Cohere summarize endpoint.
type CohereGenerator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// CohereRequest represents a request to Cohere's summarize API
type CohereRequest struct {
	Text        string  `json:"text"`
	Length      string  `json:"length"`
	Format      string  `json:"format"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// CohereResponse represents a response from Cohere's summarize API
type CohereResponse struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Message string `json:"message,omitempty"`
}

// NewCohereGenerator creates a new Cohere generator. A missing API key is
// reported when Generate is called.
func NewCohereGenerator(apiKey, model, baseURL string, httpClient *http.Client) *CohereGenerator {
	if model == "" {
		model = DefaultCohereModel
	}
	if baseURL == "" {
		baseURL = DefaultCohereBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &CohereGenerator{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the engine name
func (g *CohereGenerator) Name() string {
	return Cohere
}

// Generate implements Generator for Cohere. Cohere chooses the summary
// length itself, so only the text is sent.
func (g *CohereGenerator) Generate(ctx context.Context, text string, _ Bounds) (string, error) {
	if g.apiKey == "" {
		return "", errortypes.GenerationError(Cohere, ErrMissingAPIKey)
	}

	summary, err := g.summarize(ctx, text)
	if err != nil {
		return "", errortypes.GenerationError(Cohere, err).WithField("model", g.model)
	}
	return summary, nil
}

func (g *CohereGenerator) summarize(ctx context.Context, text string) (string, error) {
	reqJSON, err := json.Marshal(CohereRequest{
		Text:        text,
		Length:      "auto",
		Format:      "paragraph",
		Model:       g.model,
		Temperature: remoteTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/summarize", bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request to Cohere API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var cohereResponse CohereResponse
	if err := json.Unmarshal(respBody, &cohereResponse); err != nil {
		return "", fmt.Errorf("error unmarshaling response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := cohereResponse.Message
		if msg == "" {
			msg = truncate(string(respBody), 200)
		}
		return "", fmt.Errorf("Cohere API error (status %d): %s", resp.StatusCode, msg)
	}

	summary := strings.TrimSpace(cohereResponse.Summary)
	if summary == "" {
		return "", ErrEmptyOutput
	}
	return summary, nil
}
