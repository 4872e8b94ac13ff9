package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/tools"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 10 << 20

	shutdownTimeout = 10 * time.Second
)

// HTTPServer implements ToolServer as a JSON HTTP API with the routes
// POST /summarize, POST /batch, POST /analyze, GET /models and GET /health.
// A non-nil metrics handler is mounted at GET /metrics.
type HTTPServer struct {
	addr    string
	tools   *SummaryToolServer
	metrics http.Handler
	logger  *slog.Logger

	handler http.Handler
	srv     *http.Server
}

// NewHTTPServer creates an HTTPServer listening on addr.
func NewHTTPServer(addr string, ts *SummaryToolServer, metrics http.Handler, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{
		addr:    addr,
		tools:   ts,
		metrics: metrics,
		logger:  logger,
	}
}

// Initialize builds the route table.
func (h *HTTPServer) Initialize() error {
	if h.tools == nil {
		return errortypes.ConfigError(errors.New("missing tool server"), "http server initialization failed").
			WithComponent(errortypes.ComponentToolServer)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /summarize", h.handleSummarize)
	mux.HandleFunc("POST /batch", h.handleBatch)
	mux.HandleFunc("POST /analyze", h.handleAnalyze)
	mux.HandleFunc("GET /models", h.handleModels)
	mux.HandleFunc("GET /health", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}

	h.handler = mux
	h.srv = &http.Server{
		Addr:              h.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Handler returns the route table. It is nil before Initialize.
func (h *HTTPServer) Handler() http.Handler {
	return h.handler
}

// Start serves HTTP until Stop is called.
func (h *HTTPServer) Start() error {
	if h.srv == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start http server").
			WithComponent(errortypes.ComponentToolServer)
	}

	h.logger.Info("Starting HTTP API", "addr", h.addr)
	if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errortypes.NetworkError(err, "http server failed").
			WithComponent(errortypes.ComponentToolServer).
			WithField("addr", h.addr)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (h *HTTPServer) Stop() error {
	if h.srv == nil {
		return nil
	}
	h.logger.Info("Stopping HTTP API")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.srv.Shutdown(ctx)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		HandleBadRequest(w, "request body is not valid JSON", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *HTTPServer) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req tools.SummarizeTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.tools.Summarize(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Result)
}

func (h *HTTPServer) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req tools.BatchSummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.tools.SummarizeBatch(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req tools.AnalyzeTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.tools.Analyze(req)
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Statistics)
}

func (h *HTTPServer) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.tools.ListModels())
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp, err := h.tools.Health()
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Report)
}
