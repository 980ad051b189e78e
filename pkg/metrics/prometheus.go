// Package metrics provides Prometheus metrics for the edupredict service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Prediction Metrics - what the service exists for
	predictionsTotal  *prometheus.CounterVec
	predictionErrors  *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	modelInfo         *prometheus.GaugeVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "edupredict",
		subsystem:        "service",
		histogramBuckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.predictionsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "predictions_total",
		Help:        "Total number of successful predictions by predicted label",
		ConstLabels: m.constLabels,
	}, []string{"label"})

	m.predictionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "prediction_errors_total",
		Help:        "Total number of failed prediction requests by error kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "prediction_latency_milliseconds",
		Help:        "Histogram of assemble + classify + interpret latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.modelInfo = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "model_info",
		Help:        "Loaded classifier artifact; value is always 1",
		ConstLabels: m.constLabels,
	}, []string{"name", "path", "classes"})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds (user experience)",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	// Error Metrics - Detailed error tracking
	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Total number of errors by type and severity",
		ConstLabels: m.constLabels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Total number of errors by endpoint, method and type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "error_latency_milliseconds",
		Help:        "Latency of operations that ended in an error, in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_bytes",
		Help:        "Heap bytes allocated by the process",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutines",
		Help:        "Number of live goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// Prediction Metrics Functions.

// RecordPrediction increments the prediction counter for label.
func RecordPrediction(label string) {
	globalManager.predictionsTotal.WithLabelValues(label).Inc()
}

// RecordPredictionError increments the prediction error counter for kind.
func RecordPredictionError(kind string) {
	globalManager.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordPredictionLatency records prediction latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// SetModelInfo publishes the loaded artifact.
func SetModelInfo(name, path, classes string) {
	globalManager.modelInfo.Reset()
	globalManager.modelInfo.WithLabelValues(name, path, classes).Set(1)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
