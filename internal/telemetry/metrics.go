// Package telemetry provides metrics collection and reporting
// for monitoring the summarization pipeline.
package telemetry

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// MetricsCollector provides a thread-safe interface for collecting
// application metrics for monitoring and troubleshooting.
type MetricsCollector struct {
	counters   map[string]int64
	gauges     map[string]float64
	timers     map[string][]time.Duration
	latestTime map[string]time.Time
	mu         sync.RWMutex
}

// Metric names recorded by the summarization pipeline.
const (
	// Request counts
	MetricRequestsTotal       = "pipeline.requests.total"
	MetricRequestsFailed      = "pipeline.requests.failed"
	MetricRequestsExtractive  = "pipeline.requests.extractive"
	MetricRequestsAbstractive = "pipeline.requests.abstractive"
	MetricRequestsHybrid      = "pipeline.requests.hybrid"
	MetricRequestsRemote      = "pipeline.requests.remote"
	MetricRequestDuration     = "pipeline.duration"

	// Batch metrics
	MetricBatchRequests = "pipeline.batch.requests"
	MetricBatchAborts   = "pipeline.batch.aborts"
	MetricBatchSize     = "pipeline.batch.last_size"
	MetricBatchDuration = "pipeline.batch.duration"

	// Generation success/failure
	MetricGenerationSuccess = "engine.calls.success"
	MetricGenerationFailure = "engine.calls.failure"

	// Retry metrics
	MetricRetryAttempts = "engine.retry_attempts"
	MetricRetrySuccess  = "engine.retry_success"

	// Chunking metrics
	MetricChunkedCalls = "engine.chunked.calls"
	MetricChunksTotal  = "engine.chunked.chunks"
	MetricSecondPass   = "engine.chunked.second_pass"

	// Hybrid fallback metrics
	MetricHybridFallbacks = "summarizer.hybrid.fallbacks"
)

// MetricGenerationCalls names the per-engine call counter.
func MetricGenerationCalls(engine string) string {
	return "engine.calls." + engine
}

// MetricResponseTime names the per-engine response time timer.
func MetricResponseTime(engine string) string {
	return "engine.response_time." + engine
}

// NewMetricsCollector creates a new MetricsCollector instance
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		timers:     make(map[string][]time.Duration),
		latestTime: make(map[string]time.Time),
	}
}

// IncrementCounter increments a named counter by the specified amount
func (m *MetricsCollector) IncrementCounter(name string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[name] += amount
}

// SetGauge sets a named gauge to the specified value
func (m *MetricsCollector) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges[name] = value
}

// RecordTimer records a duration for the specified timer
func (m *MetricsCollector) RecordTimer(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.timers[name]; !exists {
		m.timers[name] = make([]time.Duration, 0)
	}

	m.timers[name] = append(m.timers[name], duration)

	// Limit the number of stored durations to avoid unbounded growth
	if len(m.timers[name]) > 100 {
		m.timers[name] = m.timers[name][1:]
	}
}

// RecordTimestamp records the current time for the specified event
func (m *MetricsCollector) RecordTimestamp(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latestTime[name] = time.Now()
}

// GetCounter retrieves the current value of a counter
func (m *MetricsCollector) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.counters[name]
}

// GetGauge retrieves the current value of a gauge
func (m *MetricsCollector) GetGauge(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.gauges[name]
}

// GetTimerAverage calculates the average duration for a timer
func (m *MetricsCollector) GetTimerAverage(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return timerAverage(m.timers[name])
}

func timerAverage(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	return total / time.Duration(len(durations))
}

// GetTimerP95 calculates the 95th percentile duration for a timer
func (m *MetricsCollector) GetTimerP95(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return timerP95(m.timers[name])
}

func timerP95(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	// Calculate p95 index
	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}

// GetTimeSince calculates the time elapsed since a recorded timestamp
func (m *MetricsCollector) GetTimeSince(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	timestamp, exists := m.latestTime[name]
	if !exists {
		return 0
	}

	return time.Since(timestamp)
}

// GetReport generates a report of all collected metrics
func (m *MetricsCollector) GetReport() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := "Metrics Report:\n"
	report += "==============\n\n"

	report += "Counters:\n"
	for name, value := range m.counters {
		report += fmt.Sprintf("  %s: %d\n", name, value)
	}

	report += "\nGauges:\n"
	for name, value := range m.gauges {
		report += fmt.Sprintf("  %s: %.2f\n", name, value)
	}

	report += "\nTimers (avg):\n"
	for name, durations := range m.timers {
		report += fmt.Sprintf("  %s: avg=%v p95=%v count=%d\n",
			name, timerAverage(durations), timerP95(durations), len(durations))
	}

	report += "\nTime Since:\n"
	for name, timestamp := range m.latestTime {
		report += fmt.Sprintf("  %s: %v ago (%s)\n",
			name, time.Since(timestamp), timestamp.Format(time.RFC3339))
	}

	return report
}

// Reset clears all collected metrics
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]int64)
	m.gauges = make(map[string]float64)
	m.timers = make(map[string][]time.Duration)
	m.latestTime = make(map[string]time.Time)
}

// Snapshot is a point-in-time copy of collected metrics.
type Snapshot struct {
	Counters map[string]int64
	Gauges   map[string]float64
	Timers   map[string]TimerStats
}

// TimerStats summarizes recorded durations for one timer.
type TimerStats struct {
	Count   int
	Average time.Duration
	P95     time.Duration
}

// Snapshot copies the current counters, gauges and timer summaries.
func (m *MetricsCollector) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Gauges:   make(map[string]float64, len(m.gauges)),
		Timers:   make(map[string]TimerStats, len(m.timers)),
	}
	for k, v := range m.counters {
		snap.Counters[k] = v
	}
	for k, v := range m.gauges {
		snap.Gauges[k] = v
	}
	for k, d := range m.timers {
		snap.Timers[k] = TimerStats{Count: len(d), Average: timerAverage(d), P95: timerP95(d)}
	}
	return snap
}
