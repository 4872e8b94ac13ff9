package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/telemetry"
	"github.com/localrivet/distill/internal/textproc"
	"github.com/localrivet/distill/internal/util"
	"github.com/localrivet/distill/internal/vector"
)

// Options configures a Pipeline.
type Options struct {
	// DefaultEngine replaces DefaultEngine for requests naming no engine.
	DefaultEngine    string
	BatchLimit       int
	BatchConcurrency int
	MinTextLength    int
	Metrics          *telemetry.MetricsCollector
	Logger           *slog.Logger
}

// Pipeline is the entry point for summarization. It is safe for concurrent
// use.
type Pipeline struct {
	registry  *engine.Registry
	segmenter *textproc.Segmenter
	selector  *Selector
	composer  *Composer
	metrics   *telemetry.MetricsCollector
	logger    *slog.Logger

	defaultEngine    string
	batchLimit       int
	batchConcurrency int
	minTextLength    int
}

// NewPipeline wires the strategies over the given engines, segmenter and scorer.
func NewPipeline(registry *engine.Registry, segmenter *textproc.Segmenter, scorer *vector.Scorer, opts Options) *Pipeline {
	if opts.DefaultEngine == "" {
		opts.DefaultEngine = DefaultEngine
	}
	if opts.BatchLimit <= 0 || opts.BatchLimit > DefaultBatchLimit {
		opts.BatchLimit = DefaultBatchLimit
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = DefaultBatchConcurrency
	}
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	if opts.Metrics == nil {
		opts.Metrics = registry.Metrics()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	selector := NewSelector(segmenter, scorer, opts.Logger)
	return &Pipeline{
		registry:         registry,
		segmenter:        segmenter,
		selector:         selector,
		composer:         NewComposer(selector, segmenter, opts.Metrics, opts.Logger),
		metrics:          opts.Metrics,
		logger:           opts.Logger,
		defaultEngine:    opts.DefaultEngine,
		batchLimit:       opts.BatchLimit,
		batchConcurrency: opts.BatchConcurrency,
		minTextLength:    opts.MinTextLength,
	}
}

// Registry returns the engines the pipeline dispatches to.
func (p *Pipeline) Registry() *engine.Registry {
	return p.registry
}

// Metrics returns the pipeline's metrics collector.
func (p *Pipeline) Metrics() *telemetry.MetricsCollector {
	return p.metrics
}

// MinTextLength is the shortest document accepted by RunBatch.
func (p *Pipeline) MinTextLength() int {
	return p.minTextLength
}

// BatchLimit is the largest batch accepted by RunBatch.
func (p *Pipeline) BatchLimit() int {
	return p.batchLimit
}

func (p *Pipeline) withDefaults(req Request) Request {
	if req.Engine == "" {
		req.Engine = p.defaultEngine
	}
	return req.WithDefaults()
}

// Run validates and normalizes the request text and summarizes it with the
// requested method and engine. Remote engines always summarize the whole
// normalized text in one call, whatever the method.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	req = p.withDefaults(req)

	p.metrics.IncrementCounter(telemetry.MetricRequestsTotal, 1)
	if err := req.Validate(); err != nil {
		p.metrics.IncrementCounter(telemetry.MetricRequestsFailed, 1)
		return Result{}, err
	}

	gen, err := p.registry.Get(req.Engine)
	if err != nil {
		p.metrics.IncrementCounter(telemetry.MetricRequestsFailed, 1)
		return Result{}, errortypes.ValidationError(err, "engine not available").WithField("engine", req.Engine)
	}

	text := textproc.Normalize(req.Text)
	docID := util.Fingerprint(text)

	p.logger.Debug("Summarizing document",
		"document", docID,
		"method", string(req.Method),
		"engine", req.Engine,
		"characters", textproc.RuneLength(text))

	var summary string
	if text != "" {
		summary, err = p.dispatch(ctx, text, req, gen)
	}
	elapsed := time.Since(start)

	if err != nil {
		p.metrics.IncrementCounter(telemetry.MetricRequestsFailed, 1)
		return Result{}, p.annotate(err, req, elapsed).WithField("document", docID)
	}

	p.metrics.RecordTimer(telemetry.MetricRequestDuration, elapsed)

	original := textproc.WordCount(text)
	length := textproc.WordCount(summary)
	var ratio float64
	if original > 0 {
		ratio = float64(length) / float64(original)
	}

	return Result{
		Summary:          summary,
		Method:           req.Method,
		Engine:           req.Engine,
		OriginalLength:   original,
		SummaryLength:    length,
		CompressionRatio: ratio,
		ProcessingTime:   elapsed.Seconds(),
	}, nil
}

func (p *Pipeline) dispatch(ctx context.Context, text string, req Request, gen engine.Generator) (string, error) {
	if engine.IsRemote(req.Engine) {
		p.metrics.IncrementCounter(telemetry.MetricRequestsRemote, 1)
		return gen.Generate(ctx, text, req.bounds())
	}

	switch req.Method {
	case MethodExtractive:
		p.metrics.IncrementCounter(telemetry.MetricRequestsExtractive, 1)
		return p.selector.Select(ctx, text, req.MaxSentences)
	case MethodAbstractive:
		p.metrics.IncrementCounter(telemetry.MetricRequestsAbstractive, 1)
		return gen.Generate(ctx, text, req.bounds())
	case MethodHybrid:
		p.metrics.IncrementCounter(telemetry.MetricRequestsHybrid, 1)
		return p.composer.Compose(ctx, text, gen, req)
	default:
		return "", errortypes.ValidationError(fmt.Errorf("unsupported method %q", req.Method), "invalid summarization request")
	}
}

// annotate returns a copy of err's AppError with request context attached,
// wrapping untyped errors. err itself is never modified.
func (p *Pipeline) annotate(err error, req Request, elapsed time.Duration) *errortypes.AppError {
	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		annotated := *appErr
		annotated.Fields = maps.Clone(appErr.Fields)
		appErr = &annotated
	} else {
		appErr = errortypes.InternalError(err, "summarization failed")
	}
	return appErr.WithFields(map[string]interface{}{
		"method":     string(req.Method),
		"engine":     req.Engine,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}

// RunBatch summarizes every document of the batch with the same
// parameters. Oversized or empty batches and invalid documents are rejected
// before any work starts. Documents run concurrently; results keep input
// order. The first failure aborts the batch and discards all results.
func (p *Pipeline) RunBatch(ctx context.Context, batch BatchRequest) (BatchResult, error) {
	start := time.Now()
	batchID := uuid.NewString()
	n := len(batch.Documents)

	p.metrics.IncrementCounter(telemetry.MetricBatchRequests, 1)
	p.metrics.SetGauge(telemetry.MetricBatchSize, float64(n))

	if n == 0 {
		return BatchResult{}, errortypes.ValidationError(errors.New("batch contains no documents"), "invalid batch request")
	}
	if n > p.batchLimit {
		return BatchResult{}, errortypes.ValidationError(
			fmt.Errorf("batch of %d documents exceeds the limit of %d", n, p.batchLimit),
			"invalid batch request",
		).WithField("batch_size", n)
	}

	requests := make([]Request, n)
	for i := range batch.Documents {
		req := p.withDefaults(batch.Request(i))
		err := req.Validate()
		if err == nil {
			err = ValidateText(req.Text, p.minTextLength)
		}
		if err != nil {
			p.metrics.IncrementCounter(telemetry.MetricBatchAborts, 1)
			return BatchResult{}, errortypes.BatchAbortError(i, err).WithField("batch_id", batchID)
		}
		requests[i] = req
	}

	p.logger.Info("Processing batch",
		"batch_id", batchID,
		"documents", n,
		"method", string(requests[0].Method),
		"engine", requests[0].Engine,
		"concurrency", p.batchConcurrency)

	results := make([]Result, n)
	var aborted atomic.Bool

	var g errgroup.Group
	g.SetLimit(p.batchConcurrency)
	for i, req := range requests {
		g.Go(func() error {
			// Documents not yet started are skipped once the batch has failed;
			// running ones finish on their own.
			if aborted.Load() {
				return nil
			}
			res, err := p.Run(ctx, req)
			if err != nil {
				aborted.Store(true)
				return errortypes.BatchAbortError(i, err).WithField("batch_id", batchID)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.metrics.IncrementCounter(telemetry.MetricBatchAborts, 1)
		errortypes.LogError(p.logger, err)
		return BatchResult{}, err
	}

	total := time.Since(start)
	p.metrics.RecordTimer(telemetry.MetricBatchDuration, total)
	p.logger.Info("Batch completed", "batch_id", batchID, "documents", n, "duration", total)

	return BatchResult{
		Results:             results,
		TotalProcessingTime: total.Seconds(),
	}, nil
}
