package summarizer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/telemetry"
)

// Version is reported in health reports.
var Version = "0.1.0"

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	// StatusHealthy indicates a component is fully operational
	StatusHealthy HealthStatus = "healthy"

	// StatusDegraded indicates a component is operational but with reduced capability
	StatusDegraded HealthStatus = "degraded"

	// StatusUnhealthy indicates a component is not operational
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthReport contains information about the current health of the pipeline
type HealthReport struct {
	Status          HealthStatus       `json:"status"`
	Timestamp       time.Time          `json:"timestamp"`
	Engines         map[string]bool    `json:"engines"`
	AvailableModels []string           `json:"available_models"`
	Calls           map[string]int64   `json:"calls"`
	ResponseTimes   map[string]float64 `json:"response_times_ms"`
	SuccessRate     float64            `json:"success_rate"`
	TotalCalls      int64              `json:"total_calls"`
	HybridFallbacks int64              `json:"hybrid_fallbacks"`
	BatchAborts     int64              `json:"batch_aborts"`
	Version         string             `json:"version"`
}

// CreateHealthReport generates a health report from the engine registry and
// the metrics it records into. The pipeline is healthy when every engine
// is configured, degraded when only some are, and unhealthy when none are.
func CreateHealthReport(registry *engine.Registry, m *telemetry.MetricsCollector) (*HealthReport, error) {
	if registry == nil {
		return nil, fmt.Errorf("engine registry is nil")
	}
	if m == nil {
		m = registry.Metrics()
	}
	if m == nil {
		return nil, fmt.Errorf("metrics collector is nil")
	}

	available := registry.Available()
	engines := make(map[string]bool, len(available))
	calls := make(map[string]int64, len(available))
	responseTimes := make(map[string]float64, len(available)+1)

	configured := 0
	for _, name := range available {
		ok := registry.Configured(name)
		engines[name] = ok
		if ok {
			configured++
		}
		calls[name] = m.GetCounter(telemetry.MetricGenerationCalls(name))
		responseTimes[name] = float64(m.GetTimerAverage(telemetry.MetricResponseTime(name))) / float64(time.Millisecond)
	}
	responseTimes["total"] = float64(m.GetTimerAverage(telemetry.MetricRequestDuration)) / float64(time.Millisecond)

	status := StatusHealthy
	if configured == 0 {
		status = StatusUnhealthy
	} else if configured < len(available) {
		status = StatusDegraded
	}

	// Calculate success rate
	totalSuccess := m.GetCounter(telemetry.MetricGenerationSuccess)
	totalFailure := m.GetCounter(telemetry.MetricGenerationFailure)
	totalCalls := totalSuccess + totalFailure

	var successRate float64
	if totalCalls > 0 {
		successRate = float64(totalSuccess) / float64(totalCalls) * 100.0
	}

	return &HealthReport{
		Status:          status,
		Timestamp:       time.Now(),
		Engines:         engines,
		AvailableModels: available,
		Calls:           calls,
		ResponseTimes:   responseTimes,
		SuccessRate:     successRate,
		TotalCalls:      totalCalls,
		HybridFallbacks: m.GetCounter(telemetry.MetricHybridFallbacks),
		BatchAborts:     m.GetCounter(telemetry.MetricBatchAborts),
		Version:         Version,
	}, nil
}

// CreateHealthReportJSON generates a JSON health report
func CreateHealthReportJSON(registry *engine.Registry, m *telemetry.MetricsCollector) (string, error) {
	report, err := CreateHealthReport(registry, m)
	if err != nil {
		return "", err
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal health report: %w", err)
	}

	return string(reportJSON), nil
}

// ResetMetrics resets all metrics recorded by the registry's engines
func ResetMetrics(registry *engine.Registry) error {
	if registry == nil {
		return fmt.Errorf("engine registry is nil")
	}

	m := registry.Metrics()
	if m == nil {
		return fmt.Errorf("metrics collector is nil")
	}

	m.Reset()
	return nil
}
