package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/localrivet/distill/internal/errortypes"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-3.5-turbo"

// OpenAIGenerator summarizes with the OpenAI Chat Completions API.
type OpenAIGenerator struct {
	client openai.Client
	apiKey string
	model  string
}

// NewOpenAIGenerator creates a new OpenAI generator. A missing API key is
// reported when Generate is called. baseURL may be empty.
func NewOpenAIGenerator(apiKey, model, baseURL string) *OpenAIGenerator {
	if model == "" {
		model = DefaultOpenAIModel
	}

	// Retries are handled by Retrying so failures are counted once per attempt.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(DefaultTimeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		apiKey: apiKey,
		model:  model,
	}
}

// Name returns the engine name
func (g *OpenAIGenerator) Name() string {
	return OpenAI
}

// Generate implements Generator for OpenAI.
func (g *OpenAIGenerator) Generate(ctx context.Context, text string, b Bounds) (string, error) {
	if g.apiKey == "" {
		return "", errortypes.GenerationError(OpenAI, ErrMissingAPIKey)
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildPrompt(text, b)),
		},
		Temperature: openai.Float(remoteTemperature),
	}
	if b.MaxLength > 0 {
		params.MaxTokens = openai.Int(int64(b.MaxLength * 2))
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errortypes.GenerationError(OpenAI, fmt.Errorf("chat completion failed: %w", err)).
			WithField("model", g.model)
	}
	if len(completion.Choices) == 0 {
		return "", errortypes.GenerationError(OpenAI, ErrEmptyOutput).WithField("model", g.model)
	}

	summary := strings.TrimSpace(completion.Choices[0].Message.Content)
	if summary == "" {
		return "", errortypes.GenerationError(OpenAI, ErrEmptyOutput).WithField("model", g.model)
	}
	return summary, nil
}

func buildPrompt(text string, b Bounds) string {
	var sb strings.Builder
	if b.MaxSentences > 0 {
		fmt.Fprintf(&sb, "Please summarize the following text in %d sentences or less.\n", b.MaxSentences)
	} else {
		sb.WriteString("Please summarize the following text.\n")
	}
	if b.MaxLength > 0 {
		fmt.Fprintf(&sb, "The summary should be between %d and %d words.\n", b.MinLength, b.MaxLength)
	}
	sb.WriteString("\nText to summarize:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nSummary:")
	return sb.String()
}
