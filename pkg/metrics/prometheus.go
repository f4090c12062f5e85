// Package metrics provides Prometheus metrics for the swim team optimizer service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the optimizer service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	runBuckets       []float64
	registry         prometheus.Registerer

	// Optimization run metrics
	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	slotsFilled       prometheus.Counter
	slotsUnfilled     prometheus.Counter
	relaysIncomplete  prometheus.Counter
	qualifyingResults prometheus.Counter
	runWarnings       prometheus.Counter
	requestsDuplicate prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store metrics
	storeRecords   prometheus.Gauge
	storeLatency   *prometheus.HistogramVec
	publishResults *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Histogram bucket defaults, in milliseconds. Store and HTTP latencies sit
// well under a second; a run may take up to its configured timeout.
var (
	DefaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}
	DefaultRunBuckets     = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}
)

// The package-level recorders write to globalManager, which is registered
// on customRegistry rather than the default one so /healthz exposes only
// optimizer series.
//
//nolint:gochecknoglobals // process-wide registry and recorders
var (
	customRegistry = prometheus.NewRegistry()
	globalManager  = NewManager(WithPrometheusRegistry(customRegistry))
)

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swimopt",
		subsystem:        "optimizer",
		histogramBuckets: DefaultLatencyBuckets,
		runBuckets:       DefaultRunBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics registers every collector with the manager's registry.
func (m *Manager) initializeMetrics() {
	f := factory{auto: promauto.With(m.registry), namespace: m.namespace, subsystem: m.subsystem}

	m.runsTotal = f.counterVec("runs_total", "Optimization runs by outcome.", "outcome")
	m.runDuration = f.histogram("run_duration_milliseconds", "Optimization run duration in milliseconds.", m.runBuckets)
	m.slotsFilled = f.counter("slots_filled_total", "Individual slots filled.")
	m.slotsUnfilled = f.counter("slots_unfilled_total", "Individual slots left unfilled.")
	m.relaysIncomplete = f.counter("relays_incomplete_total", "Relays reported with missing legs.")
	m.qualifyingResults = f.counter("qualifying_results_total", "Assigned results at or under the qualifying standard.")
	m.runWarnings = f.counter("run_warnings_total", "Data-quality warnings raised by runs.")
	m.requestsDuplicate = f.counter("requests_duplicate_total", "Duplicate job submissions detected.")

	m.queueSize = f.gauge("queue_size", "Jobs waiting in the queue.")
	m.queueCapacity = f.gauge("queue_capacity", "Maximum queue capacity.")
	m.queueUtilization = f.gauge("queue_utilization_ratio", "Queue size divided by capacity.")
	m.queueEnqueue = f.counter("queue_enqueue_total", "Jobs enqueued.")
	m.queueDequeue = f.counter("queue_dequeue_total", "Jobs dequeued.")
	m.queueEnqueueErrors = f.counter("queue_enqueue_errors_total", "Rejected enqueue attempts.")

	m.workerCount = f.gauge("worker_count", "Configured number of workers.")
	m.workerActiveCount = f.gauge("worker_active_count", "Workers currently executing a job.")
	m.workerProcessingLatency = f.histogram("worker_processing_latency_milliseconds", "Job processing latency in milliseconds.", m.runBuckets)
	m.workerErrors = f.counter("worker_errors_total", "Failed jobs.")

	m.storeRecords = f.gauge("store_records_total", "Runs held by the run store.")
	m.storeLatency = f.histogramVec("store_latency_milliseconds", "Run store operation latency in milliseconds.", m.histogramBuckets, "backend", "operation")
	m.publishResults = f.counterVec("publish_total", "Run-completed notifications by outcome.", "outcome")

	m.httpRequests = f.counterVec("http_requests_total", "HTTP requests by endpoint, method and status.", "endpoint", "method", "status_code")
	m.httpRequestDuration = f.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds.", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = f.counterVec("errors_by_component_total", "Errors by component.", "component", "error_type")
	m.errorRateByEndpoint = f.counterVec("errors_by_endpoint_total", "Errors by endpoint.", "endpoint", "method", "error_type")
}

// factory stamps the manager's namespace and subsystem on every collector.
type factory struct {
	auto      promauto.Factory
	namespace string
	subsystem string
}

func (f factory) counter(name, help string) prometheus.Counter {
	return f.auto.NewCounter(prometheus.CounterOpts{Namespace: f.namespace, Subsystem: f.subsystem, Name: name, Help: help})
}

func (f factory) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return f.auto.NewCounterVec(prometheus.CounterOpts{Namespace: f.namespace, Subsystem: f.subsystem, Name: name, Help: help}, labels)
}

func (f factory) gauge(name, help string) prometheus.Gauge {
	return f.auto.NewGauge(prometheus.GaugeOpts{Namespace: f.namespace, Subsystem: f.subsystem, Name: name, Help: help})
}

func (f factory) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return f.auto.NewHistogram(prometheus.HistogramOpts{Namespace: f.namespace, Subsystem: f.subsystem, Name: name, Help: help, Buckets: buckets})
}

func (f factory) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return f.auto.NewHistogramVec(prometheus.HistogramOpts{Namespace: f.namespace, Subsystem: f.subsystem, Name: name, Help: help, Buckets: buckets}, labels)
}

// Run metrics.

// RecordRun records a finished run with its outcome ("succeeded" or "failed")
// and duration.
func RecordRun(outcome string, durationMs float64) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// RecordRunResult records the coverage figures of a successful run.
func RecordRunResult(filled, unfilled, incompleteRelays, qualifying, warnings int) {
	globalManager.slotsFilled.Add(float64(filled))
	globalManager.slotsUnfilled.Add(float64(unfilled))
	globalManager.relaysIncomplete.Add(float64(incompleteRelays))
	globalManager.qualifyingResults.Add(float64(qualifying))
	globalManager.runWarnings.Add(float64(warnings))
}

// RecordRequestDuplicate increments the duplicate submissions counter.
func RecordRequestDuplicate() {
	globalManager.requestsDuplicate.Inc()
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker metrics.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive adjusts the number of busy workers by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Store metrics.

// UpdateStoreRecords sets the number of stored runs.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// RecordStoreLatency records a store operation latency.
func RecordStoreLatency(backend, operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(backend, operation).Observe(latencyMs)
}

// RecordPublish records the outcome of a run-completed notification.
func RecordPublish(outcome string) {
	globalManager.publishResults.WithLabelValues(outcome).Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
