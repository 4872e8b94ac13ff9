package telemetry

import (
	"context"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "distill"

	// defaultReadHeaderTimeout is the timeout for reading request headers.
	defaultReadHeaderTimeout = 10 * time.Second
)

var invalidMetricChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// PromName converts a dotted metric name into a Prometheus metric name.
func PromName(name string) string {
	return namespace + "_" + invalidMetricChars.ReplaceAllString(name, "_")
}

// promCollector exposes a MetricsCollector to Prometheus. The metric set
// grows as engines are used, so it is registered as an unchecked collector.
type promCollector struct {
	metrics *MetricsCollector
}

// NewPrometheusCollector wraps metrics as a prometheus.Collector.
func NewPrometheusCollector(metrics *MetricsCollector) prometheus.Collector {
	return &promCollector{metrics: metrics}
}

// Describe sends nothing, which marks the collector as unchecked.
func (c *promCollector) Describe(chan<- *prometheus.Desc) {}

// Collect converts a snapshot into constant metrics.
func (c *promCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()

	for name, v := range snap.Counters {
		desc := prometheus.NewDesc(PromName(name), "Counter "+name, nil, nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v))
	}
	for name, v := range snap.Gauges {
		desc := prometheus.NewDesc(PromName(name), "Gauge "+name, nil, nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v)
	}
	for name, t := range snap.Timers {
		desc := prometheus.NewDesc(PromName(name)+"_seconds", "Recent durations of "+name, nil, nil)
		sum := t.Average.Seconds() * float64(t.Count)
		ch <- prometheus.MustNewConstSummary(desc, uint64(t.Count), sum, map[float64]float64{0.95: t.P95.Seconds()})
	}
}

// Exporter serves Prometheus metrics over HTTP.
type Exporter struct {
	addr     string
	server   *http.Server
	registry *prometheus.Registry
	mu       sync.Mutex
	started  bool
}

// NewExporter creates an exporter serving metrics and Go runtime metrics at addr.
func NewExporter(addr string, metrics *MetricsCollector) *Exporter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewPrometheusCollector(metrics))
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Exporter{
		addr:     addr,
		registry: reg,
	}
}

// Registry returns the underlying Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns an http.Handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Start begins serving metrics at /metrics. It blocks until the server is
// stopped and returns http.ErrServerClosed after a graceful shutdown.
func (e *Exporter) Start() error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	e.server = &http.Server{
		Addr:              e.addr,
		Handler:           mux,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}
	e.started = true
	e.mu.Unlock()

	return e.server.ListenAndServe()
}

// Shutdown gracefully stops the exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.server != nil && e.started {
		e.started = false
		return e.server.Shutdown(ctx)
	}
	return nil
}
