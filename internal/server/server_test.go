package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/summarizer"
	"github.com/localrivet/distill/internal/telemetry"
	"github.com/localrivet/distill/internal/textproc"
	"github.com/localrivet/distill/internal/tools"
	"github.com/localrivet/distill/internal/vector"
)

const testDocument = "The city council approved the annual budget on Monday. " +
	"Heavy rain flooded several streets downtown. " +
	"The budget increases school funding by ten percent. " +
	"A local bakery won a regional award."

// newTestToolServer builds a tool server over static generators.
func newTestToolServer(t *testing.T, gens ...engine.Generator) *SummaryToolServer {
	t.Helper()

	seg, err := textproc.NewSegmenter()
	if err != nil {
		t.Fatalf("Failed to create segmenter: %v", err)
	}
	metrics := telemetry.NewMetricsCollector()
	registry := engine.NewStaticRegistry(seg, 0, metrics, nil, gens...)
	scorer := vector.NewScorer(vector.NewHashingEmbedder(64), nil)
	pipeline := summarizer.NewPipeline(registry, seg, scorer, summarizer.Options{})

	srv := NewSummaryToolServer(pipeline, seg, nil, nil)
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Failed to initialize server: %v", err)
	}
	return srv
}

func TestInitializeRequiresDependencies(t *testing.T) {
	srv := NewSummaryToolServer(nil, nil, nil, nil)
	if err := srv.Initialize(); err == nil {
		t.Fatal("Expected initialization error")
	}
	if err := srv.Start(); err == nil {
		t.Fatal("Expected start error before initialization")
	}
}

func TestInitializeDefersMCPServer(t *testing.T) {
	srv := newTestToolServer(t)
	if srv.mcpServer != nil {
		t.Fatal("Expected no MCP server before Start")
	}

	// The operations are usable without the MCP transport.
	resp, err := srv.Analyze(tools.AnalyzeTextRequest{Text: testDocument})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if resp.Statistics.SentenceCount != 4 {
		t.Errorf("Expected 4 sentences, got %d", resp.Statistics.SentenceCount)
	}
}

func TestSummarizeText(t *testing.T) {
	gen := engine.NewCountingGenerator(engine.Bart, func(string) string { return "Council approves budget." })
	srv := newTestToolServer(t, gen)

	req := tools.SummarizeTextRequest{
		Text:   testDocument,
		Method: string(summarizer.MethodAbstractive),
		Model:  engine.Bart,
	}

	// Call handler directly
	response, err := srv.handleSummarizeText(nil, req)
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != tools.StatusSuccess {
		t.Fatalf("Expected status 'success', got '%s' (%s)", response.Status, response.Error)
	}
	if response.RequestID == "" {
		t.Error("Expected non-empty request ID")
	}
	if response.Result == nil || response.Result.Summary != "Council approves budget." {
		t.Fatalf("Unexpected result: %+v", response.Result)
	}
	if response.Result.Model != engine.Bart || response.Result.Method != "abstractive" {
		t.Errorf("Unexpected method/model: %s/%s", response.Result.Method, response.Result.Model)
	}
	if gen.Calls() != 1 {
		t.Errorf("Expected 1 generator call, got %d", gen.Calls())
	}
}

func TestSummarizeTextErrors(t *testing.T) {
	testCases := []struct {
		name     string
		req      tools.SummarizeTextRequest
		gen      engine.Generator
		wantCode string
	}{
		{
			name:     "Text Too Short",
			req:      tools.SummarizeTextRequest{Text: "Too short."},
			gen:      engine.NewStaticGenerator(engine.Bart, "x", nil),
			wantCode: CodeValidationError,
		},
		{
			name:     "Bad Bounds",
			req:      tools.SummarizeTextRequest{Text: testDocument, MaxLength: 10, MinLength: 20},
			gen:      engine.NewStaticGenerator(engine.Bart, "x", nil),
			wantCode: CodeValidationError,
		},
		{
			name: "Remote Failure",
			req:  tools.SummarizeTextRequest{Text: testDocument, Model: engine.OpenAI},
			gen: engine.NewStaticGenerator(engine.OpenAI, "",
				errortypes.GenerationError(engine.OpenAI, errors.New("quota exceeded"))),
			wantCode: CodeGenerationError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestToolServer(t, tc.gen)

			response, err := srv.handleSummarizeText(nil, tc.req)

			// We expect no direct error from handler
			if err != nil {
				t.Fatalf("Handler should not return error: %v", err)
			}

			// Error should be in response
			if response.Status != tools.StatusError {
				t.Errorf("Expected status 'error', got '%s'", response.Status)
			}
			if response.Error == "" {
				t.Error("Expected non-empty error message")
			}
			if response.Code != tc.wantCode {
				t.Errorf("Expected code %s, got %s", tc.wantCode, response.Code)
			}
		})
	}
}

func TestBatchSummarize(t *testing.T) {
	gen := engine.NewCountingGenerator(engine.Bart, nil)
	srv := newTestToolServer(t, gen)

	texts := make([]string, 3)
	for i := range texts {
		texts[i] = fmt.Sprintf("Report %d covers the quarter in detail. It lists revenue, costs and hiring plans.", i)
	}

	response, err := srv.handleBatchSummarize(nil, tools.BatchSummarizeRequest{
		Texts:  texts,
		Method: string(summarizer.MethodAbstractive),
	})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if response.Status != tools.StatusSuccess {
		t.Fatalf("Expected status 'success', got '%s' (%s)", response.Status, response.Error)
	}
	if len(response.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(response.Results))
	}
	for i, r := range response.Results {
		want := fmt.Sprintf("Report %d covers the quarter in detail.", i)
		if r.Summary != want {
			t.Errorf("Result %d: expected %q, got %q", i, want, r.Summary)
		}
	}
}

func TestBatchSummarizeAbort(t *testing.T) {
	gen := engine.NewCountingGenerator(engine.Bart, nil)
	srv := newTestToolServer(t, gen)

	response, err := srv.handleBatchSummarize(nil, tools.BatchSummarizeRequest{
		Texts: []string{testDocument, "short"},
	})
	if err != nil {
		t.Fatalf("Handler should not return error: %v", err)
	}
	if response.Status != tools.StatusError {
		t.Fatalf("Expected status 'error', got '%s'", response.Status)
	}
	if response.Code != CodeBatchAborted {
		t.Errorf("Expected code %s, got %s", CodeBatchAborted, response.Code)
	}
	if response.FailedIndex == nil || *response.FailedIndex != 1 {
		t.Errorf("Expected failed index 1, got %v", response.FailedIndex)
	}
	if len(response.Results) != 0 {
		t.Errorf("Expected no results, got %d", len(response.Results))
	}
	if gen.Calls() != 0 {
		t.Errorf("Expected no generator calls, got %d", gen.Calls())
	}
}

func TestListModels(t *testing.T) {
	srv := newTestToolServer(t, engine.NewStaticGenerator(engine.Bart, "x", nil))

	response, err := srv.handleListModels(nil, tools.ListModelsRequest{})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if len(response.Models) != len(engine.Names()) {
		t.Errorf("Expected %d models, got %d", len(engine.Names()), len(response.Models))
	}
	if len(response.Methods) != 3 {
		t.Errorf("Expected 3 methods, got %d", len(response.Methods))
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestToolServer(t, engine.NewStaticGenerator(engine.Bart, "Summary.", nil))

	if _, err := srv.Summarize(context.Background(), tools.SummarizeTextRequest{
		Text:   testDocument,
		Method: string(summarizer.MethodAbstractive),
	}); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	response, err := srv.handleHealthCheck(nil, tools.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if response.Report == nil {
		t.Fatal("Expected a report")
	}
	if response.Report.Status != summarizer.StatusHealthy {
		t.Errorf("Expected healthy, got %s", response.Report.Status)
	}
	if response.Report.Calls[engine.Bart] != 1 {
		t.Errorf("Expected 1 bart call, got %d", response.Report.Calls[engine.Bart])
	}
}

func TestAnalyzeText(t *testing.T) {
	srv := newTestToolServer(t)

	response, err := srv.handleAnalyzeText(nil, tools.AnalyzeTextRequest{Text: testDocument})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if response.Status != tools.StatusSuccess || response.Statistics == nil {
		t.Fatalf("Unexpected response: %+v", response)
	}
	if response.Statistics.SentenceCount != 4 {
		t.Errorf("Expected 4 sentences, got %d", response.Statistics.SentenceCount)
	}
	if response.Statistics.WordCount != len(strings.Fields(testDocument)) {
		t.Errorf("Unexpected word count %d", response.Statistics.WordCount)
	}

	response, _ = srv.handleAnalyzeText(nil, tools.AnalyzeTextRequest{Text: "   "})
	if response.Status != tools.StatusError || response.Code != CodeValidationError {
		t.Errorf("Expected validation error for blank text, got %+v", response)
	}
}
