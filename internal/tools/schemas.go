// Package tools defines the request and response schemas of the distill
// MCP tools and HTTP API.
package tools

import (
	"github.com/localrivet/distill/internal/summarizer"
	"github.com/localrivet/distill/internal/textproc"
)

const (
	// ToolSummarizeText is the name of the summarize_text MCP tool
	ToolSummarizeText = "summarize_text"

	// ToolBatchSummarize is the name of the batch_summarize MCP tool
	ToolBatchSummarize = "batch_summarize"

	// ToolListModels is the name of the list_models MCP tool
	ToolListModels = "list_models"

	// ToolHealthCheck is the name of the health_check MCP tool
	ToolHealthCheck = "health_check"

	// ToolAnalyzeText is the name of the analyze_text MCP tool
	ToolAnalyzeText = "analyze_text"

	// StatusSuccess and StatusError are the values of every response Status.
	StatusSuccess = "success"
	StatusError   = "error"
)

// SummarizeTextRequest defines the input schema for summarize_text tool.
// Zero values take the pipeline defaults.
type SummarizeTextRequest struct {
	// Text is the document to summarize
	Text string `json:"text"`

	// Method is "extractive", "abstractive" or "hybrid"
	Method string `json:"method,omitempty"`

	// Model is the generation engine, e.g. "bart" or "openai"
	Model string `json:"model,omitempty"`

	MaxSentences int    `json:"max_sentences,omitempty"`
	MaxLength    int    `json:"max_length,omitempty"`
	MinLength    int    `json:"min_length,omitempty"`
	Language     string `json:"language,omitempty"`
}

// Summary is one summarization result.
type Summary struct {
	Summary          string  `json:"summary"`
	Method           string  `json:"method"`
	Model            string  `json:"model"`
	OriginalLength   int     `json:"original_length"`
	SummaryLength    int     `json:"summary_length"`
	CompressionRatio float64 `json:"compression_ratio"`
	ProcessingTime   float64 `json:"processing_time"`
}

// SummaryFromResult converts a pipeline result into its wire form.
func SummaryFromResult(r summarizer.Result) Summary {
	return Summary{
		Summary:          r.Summary,
		Method:           string(r.Method),
		Model:            r.Engine,
		OriginalLength:   r.OriginalLength,
		SummaryLength:    r.SummaryLength,
		CompressionRatio: r.CompressionRatio,
		ProcessingTime:   r.ProcessingTime,
	}
}

// SummarizeTextResponse defines the output schema for summarize_text tool
type SummarizeTextResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// RequestID identifies the call in server logs
	RequestID string `json:"request_id"`

	Result *Summary `json:"result,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`

	// Code classifies the error, e.g. VALIDATION_ERROR
	Code string `json:"code,omitempty"`
}

// BatchSummarizeRequest defines the input schema for batch_summarize tool.
// Every text is summarized with the same parameters.
type BatchSummarizeRequest struct {
	Texts        []string `json:"texts"`
	Method       string   `json:"method,omitempty"`
	Model        string   `json:"model,omitempty"`
	MaxSentences int      `json:"max_sentences,omitempty"`
	MaxLength    int      `json:"max_length,omitempty"`
	MinLength    int      `json:"min_length,omitempty"`
	Language     string   `json:"language,omitempty"`
}

// BatchSummarizeResponse defines the output schema for batch_summarize tool
type BatchSummarizeResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`

	// Results holds one summary per text, in input order
	Results             []Summary `json:"results,omitempty"`
	TotalProcessingTime float64   `json:"total_processing_time"`

	// FailedIndex is the zero-based index of the text that aborted the batch
	FailedIndex *int `json:"failed_index,omitempty"`

	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// ListModelsRequest defines the input schema for list_models tool
type ListModelsRequest struct{}

// ListModelsResponse defines the output schema for list_models tool
type ListModelsResponse struct {
	Status  string                  `json:"status"`
	Models  []summarizer.EngineInfo `json:"models"`
	Methods []summarizer.MethodInfo `json:"methods"`
}

// HealthCheckRequest defines the input schema for health_check tool
type HealthCheckRequest struct{}

// HealthCheckResponse defines the output schema for health_check tool
type HealthCheckResponse struct {
	Status string                   `json:"status"`
	Report *summarizer.HealthReport `json:"report,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// AnalyzeTextRequest defines the input schema for analyze_text tool
type AnalyzeTextRequest struct {
	Text string `json:"text"`
}

// AnalyzeTextResponse defines the output schema for analyze_text tool
type AnalyzeTextResponse struct {
	Status     string                   `json:"status"`
	Statistics *textproc.TextStatistics `json:"statistics,omitempty"`
	Error      string                   `json:"error,omitempty"`
	Code       string                   `json:"code,omitempty"`
}

// ToRequest converts the tool input into a pipeline request.
func (r SummarizeTextRequest) ToRequest() summarizer.Request {
	return summarizer.Request{
		Text:         r.Text,
		Method:       summarizer.Method(r.Method),
		Engine:       r.Model,
		MaxSentences: r.MaxSentences,
		MaxLength:    r.MaxLength,
		MinLength:    r.MinLength,
		Language:     r.Language,
	}
}

// ToBatchRequest converts the tool input into a pipeline batch request.
func (r BatchSummarizeRequest) ToBatchRequest() summarizer.BatchRequest {
	docs := make([]summarizer.Document, len(r.Texts))
	for i, text := range r.Texts {
		docs[i] = summarizer.Document{Text: text}
	}
	return summarizer.BatchRequest{
		Documents:    docs,
		Method:       summarizer.Method(r.Method),
		Engine:       r.Model,
		MaxSentences: r.MaxSentences,
		MaxLength:    r.MaxLength,
		MinLength:    r.MinLength,
		Language:     r.Language,
	}
}
