package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/localrivet/gomcp/server"

	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/summarizer"
	"github.com/localrivet/distill/internal/textproc"
	"github.com/localrivet/distill/internal/tools"
)

// ServerName is the name announced to MCP clients.
const ServerName = "distill"

// ErrServerNotInitialized is returned by Start before Initialize.
var ErrServerNotInitialized = errors.New("server not initialized")

// SummaryToolServer implements ToolServer over MCP stdio. Its operations
// are shared with HTTPServer.
type SummaryToolServer struct {
	pipeline  *summarizer.Pipeline
	segmenter *textproc.Segmenter
	tokens    *textproc.TokenCounter
	logger    *slog.Logger

	initialized bool
	mcpServer   server.Server
}

// NewSummaryToolServer creates a new SummaryToolServer. tokens may be nil,
// in which case analyze_text estimates token counts.
func NewSummaryToolServer(pipeline *summarizer.Pipeline, segmenter *textproc.Segmenter, tokens *textproc.TokenCounter, logger *slog.Logger) *SummaryToolServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryToolServer{
		pipeline:  pipeline,
		segmenter: segmenter,
		tokens:    tokens,
		logger:    logger,
	}
}

// Initialize checks the dependencies. The MCP server itself is built by
// Start, since registering tools writes notifications to stdout.
func (s *SummaryToolServer) Initialize() error {
	s.logger.Info("Initializing MCP summarization tool server")

	if s.pipeline == nil || s.segmenter == nil {
		return errortypes.ConfigError(errors.New("missing dependencies"), "server initialization failed").
			WithComponent(errortypes.ComponentToolServer)
	}

	s.initialized = true
	s.logger.Info("MCP summarization tool server initialized", "tool_count", 5)
	return nil
}

// RegisterTools adds the summarization tools to srv, so they can be served
// alongside other tools by an embedding application.
func (s *SummaryToolServer) RegisterTools(srv server.Server) server.Server {
	return srv.
		Tool(tools.ToolSummarizeText, "Summarize a document with the extractive, abstractive or hybrid method",
			s.handleSummarizeText).
		Tool(tools.ToolBatchSummarize, "Summarize up to ten documents with the same parameters",
			s.handleBatchSummarize).
		Tool(tools.ToolListModels, "List the available summarization models and methods",
			s.handleListModels).
		Tool(tools.ToolHealthCheck, "Report engine availability and call statistics",
			s.handleHealthCheck).
		Tool(tools.ToolAnalyzeText, "Compute word, sentence and token statistics and detect the language",
			s.handleAnalyzeText)
}

// Start serves the tools over stdio until stdin is closed.
func (s *SummaryToolServer) Start() error {
	if !s.initialized {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server").
			WithComponent(errortypes.ComponentToolServer)
	}

	s.logger.Info("Starting MCP summarization tool server")
	s.mcpServer = s.RegisterTools(server.NewServer(ServerName))
	return s.mcpServer.AsStdio().Run()
}

// Stop gracefully shuts down the MCP server.
func (s *SummaryToolServer) Stop() error {
	s.logger.Info("Stopping MCP summarization tool server")
	// The server exits when stdin is closed
	return nil
}

// Summarize runs one summarization. Texts shorter than the pipeline's
// minimum length are rejected.
func (s *SummaryToolServer) Summarize(ctx context.Context, req tools.SummarizeTextRequest) (tools.SummarizeTextResponse, error) {
	resp := tools.SummarizeTextResponse{Status: tools.StatusSuccess, RequestID: uuid.NewString()}
	log := s.logger.With("request_id", resp.RequestID)
	log.Info("Processing summarize_text request",
		"text_length", len(req.Text),
		"method", req.Method,
		"model", req.Model)

	if err := summarizer.ValidateText(req.Text, s.pipeline.MinTextLength()); err != nil {
		return resp, err
	}

	result, err := s.pipeline.Run(ctx, req.ToRequest())
	if err != nil {
		return resp, err
	}

	summary := tools.SummaryFromResult(result)
	resp.Result = &summary
	log.Info("Summary generated",
		"method", summary.Method,
		"model", summary.Model,
		"compression_ratio", summary.CompressionRatio)
	return resp, nil
}

// SummarizeBatch runs a batch summarization.
func (s *SummaryToolServer) SummarizeBatch(ctx context.Context, req tools.BatchSummarizeRequest) (tools.BatchSummarizeResponse, error) {
	resp := tools.BatchSummarizeResponse{Status: tools.StatusSuccess, RequestID: uuid.NewString()}
	s.logger.Info("Processing batch_summarize request",
		"request_id", resp.RequestID,
		"texts", len(req.Texts))

	result, err := s.pipeline.RunBatch(ctx, req.ToBatchRequest())
	if err != nil {
		resp.FailedIndex = failedIndex(err)
		return resp, err
	}

	resp.Results = make([]tools.Summary, len(result.Results))
	for i, r := range result.Results {
		resp.Results[i] = tools.SummaryFromResult(r)
	}
	resp.TotalProcessingTime = result.TotalProcessingTime
	return resp, nil
}

// ListModels returns the engine and method catalogue.
func (s *SummaryToolServer) ListModels() tools.ListModelsResponse {
	catalog := summarizer.Catalog()
	return tools.ListModelsResponse{
		Status:  tools.StatusSuccess,
		Models:  catalog.Engines,
		Methods: catalog.Methods,
	}
}

// Health returns the current health report.
func (s *SummaryToolServer) Health() (tools.HealthCheckResponse, error) {
	report, err := summarizer.CreateHealthReport(s.pipeline.Registry(), s.pipeline.Metrics())
	if err != nil {
		return tools.HealthCheckResponse{Status: tools.StatusError}, errortypes.InternalError(err, "failed to build health report").
			WithComponent(errortypes.ComponentToolServer)
	}
	return tools.HealthCheckResponse{Status: tools.StatusSuccess, Report: report}, nil
}

// Analyze computes text statistics.
func (s *SummaryToolServer) Analyze(req tools.AnalyzeTextRequest) (tools.AnalyzeTextResponse, error) {
	resp := tools.AnalyzeTextResponse{Status: tools.StatusSuccess}
	if strings.TrimSpace(req.Text) == "" {
		return resp, errortypes.ValidationError(errors.New("text is empty"), "invalid analyze_text request")
	}

	stats, err := s.segmenter.Statistics(req.Text, s.tokens)
	if err != nil {
		return resp, err
	}
	resp.Statistics = &stats
	return resp, nil
}

// handleSummarizeText handles the summarize_text MCP tool call.
func (s *SummaryToolServer) handleSummarizeText(ctx *server.Context, req tools.SummarizeTextRequest) (tools.SummarizeTextResponse, error) {
	resp, err := s.Summarize(context.Background(), req)
	if err != nil {
		errortypes.LogError(s.logger, err)
		resp.Status = tools.StatusError
		resp.Error = err.Error()
		resp.Code = ErrorCode(err)
	}
	return resp, nil
}

// handleBatchSummarize handles the batch_summarize MCP tool call.
func (s *SummaryToolServer) handleBatchSummarize(ctx *server.Context, req tools.BatchSummarizeRequest) (tools.BatchSummarizeResponse, error) {
	resp, err := s.SummarizeBatch(context.Background(), req)
	if err != nil {
		errortypes.LogError(s.logger, err)
		resp.Status = tools.StatusError
		resp.Error = err.Error()
		resp.Code = ErrorCode(err)
	}
	return resp, nil
}

// handleListModels handles the list_models MCP tool call.
func (s *SummaryToolServer) handleListModels(ctx *server.Context, req tools.ListModelsRequest) (tools.ListModelsResponse, error) {
	return s.ListModels(), nil
}

// handleHealthCheck handles the health_check MCP tool call.
func (s *SummaryToolServer) handleHealthCheck(ctx *server.Context, req tools.HealthCheckRequest) (tools.HealthCheckResponse, error) {
	resp, err := s.Health()
	if err != nil {
		errortypes.LogError(s.logger, err)
		resp.Error = err.Error()
	}
	return resp, nil
}

// handleAnalyzeText handles the analyze_text MCP tool call.
func (s *SummaryToolServer) handleAnalyzeText(ctx *server.Context, req tools.AnalyzeTextRequest) (tools.AnalyzeTextResponse, error) {
	resp, err := s.Analyze(req)
	if err != nil {
		errortypes.LogError(s.logger, err)
		resp.Status = tools.StatusError
		resp.Error = err.Error()
		resp.Code = ErrorCode(err)
	}
	return resp, nil
}
