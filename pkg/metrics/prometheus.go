// Package metrics provides Prometheus metrics for the Horus widget service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the Horus service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	kinds            []string
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Widget lifecycle
	widgetsMounted   *prometheus.CounterVec
	widgetsUnmounted *prometheus.CounterVec
	widgetsActive    *prometheus.GaugeVec

	// Refresher and narrator activity
	widgetTicks      *prometheus.CounterVec
	markersReplaced  *prometheus.CounterVec
	markersAppended  *prometheus.CounterVec
	markersDropped   *prometheus.CounterVec
	narratorAdvances *prometheus.CounterVec

	// Selections
	selectionsApplied   *prometheus.CounterVec
	selectionsStale     prometheus.Counter
	selectionsDuplicate prometheus.Counter

	// Snapshot fan-out
	streamSubscribers prometheus.Gauge
	snapshotsDropped  prometheus.Counter

	// Selection queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueue           prometheus.Counter
	queueDequeue           prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueDropped           prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Selection workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorByComponent    *prometheus.CounterVec
	errorByType         *prometheus.CounterVec
	errorByEndpoint     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	// The custom registry skips the Go and process collectors; system gauges
	// come from the updater in main. Build info is still exported.
	customRegistry.MustRegister(collectors.NewBuildInfoCollector())
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "horus",
		subsystem:        "widgets",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	m.prime(m.kinds)
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.widgetsMounted = auto.NewCounterVec(m.counterOpts("mounted_total", "Widget sessions mounted"), []string{"kind"})
	m.widgetsUnmounted = auto.NewCounterVec(m.counterOpts("unmounted_total", "Widget sessions torn down"), []string{"kind", "reason"})
	m.widgetsActive = auto.NewGaugeVec(m.gaugeOpts("active", "Widget sessions currently mounted"), []string{"kind"})

	m.widgetTicks = auto.NewCounterVec(m.counterOpts("ticks_total", "Timer firings handled by widget loops"), []string{"kind", "timer"})
	m.markersReplaced = auto.NewCounterVec(m.counterOpts("markers_replaced_total", "Markers replaced in place by fixed-set refreshers"), []string{"kind"})
	m.markersAppended = auto.NewCounterVec(m.counterOpts("markers_appended_total", "Markers appended by stream refreshers"), []string{"kind"})
	m.markersDropped = auto.NewCounterVec(m.counterOpts("markers_dropped_total", "Markers scrolled off or truncated by stream refreshers"), []string{"kind"})
	m.narratorAdvances = auto.NewCounterVec(m.counterOpts("narrator_advances_total", "Status narrator phase transitions"), []string{"kind", "phase"})

	m.selectionsApplied = auto.NewCounterVec(m.counterOpts("selections_applied_total", "Marker selections that overrode the status line"), []string{"kind"})
	m.selectionsStale = auto.NewCounter(m.counterOpts("selections_stale_total", "Selections for markers or sessions that no longer exist"))
	m.selectionsDuplicate = auto.NewCounter(m.counterOpts("selections_duplicate_total", "Selections rejected as duplicate event ids"))

	m.streamSubscribers = auto.NewGauge(m.gaugeOpts("stream_subscribers", "Open snapshot subscriptions"))
	m.snapshotsDropped = auto.NewCounter(m.counterOpts("snapshots_dropped_total", "Snapshots skipped for slow subscribers"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("selection_queue_size", "Selections waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("selection_queue_capacity", "Selection queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("selection_queue_utilization", "Selection queue utilization (0-1)"))
	m.queueEnqueue = auto.NewCounter(m.counterOpts("selection_queue_enqueued_total", "Selections enqueued"))
	m.queueDequeue = auto.NewCounter(m.counterOpts("selection_queue_dequeued_total", "Selections dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("selection_queue_enqueue_errors_total", "Selections rejected by the queue"))
	m.queueDropped = auto.NewCounter(m.counterOpts("selection_queue_dropped_total", "Selections dequeued but never handed to a worker"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogramOpts("selection_queue_latency_milliseconds",
		"Enqueue latency in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}))

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("selection_workers", "Selection workers running"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("selection_apply_latency_milliseconds",
		"Time to apply one selection in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250}))
	m.workerErrors = auto.NewCounter(m.counterOpts("selection_worker_errors_total", "Selections a worker failed to apply"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"})
	m.errorByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"})
	m.errorByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Goroutines running"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}))
}

// Widget lifecycle.

// RecordWidgetMounted counts a mount and bumps the active gauge.
func RecordWidgetMounted(kind string) {
	globalManager.widgetsMounted.WithLabelValues(kind).Inc()
	globalManager.widgetsActive.WithLabelValues(kind).Inc()
}

// RecordWidgetUnmounted counts a teardown and lowers the active gauge.
func RecordWidgetUnmounted(kind, reason string) {
	globalManager.widgetsUnmounted.WithLabelValues(kind, reason).Inc()
	globalManager.widgetsActive.WithLabelValues(kind).Dec()
}

// Widget loop activity.

// RecordWidgetTick counts one timer firing; timer is "refresh" or "narrate".
func RecordWidgetTick(kind, timer string) {
	globalManager.widgetTicks.WithLabelValues(kind, timer).Inc()
}

// RecordMarkersReplaced counts in-place replacements.
func RecordMarkersReplaced(kind string, n int) {
	if n > 0 {
		globalManager.markersReplaced.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordMarkersAppended counts stream appends.
func RecordMarkersAppended(kind string, n int) {
	if n > 0 {
		globalManager.markersAppended.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordMarkersDropped counts stream drops.
func RecordMarkersDropped(kind string, n int) {
	if n > 0 {
		globalManager.markersDropped.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordNarratorAdvance counts a phase transition into phase.
func RecordNarratorAdvance(kind, phase string) {
	globalManager.narratorAdvances.WithLabelValues(kind, phase).Inc()
}

// Selections.

// RecordSelectionApplied counts a selection that changed the status line.
func RecordSelectionApplied(kind string) {
	globalManager.selectionsApplied.WithLabelValues(kind).Inc()
}

// RecordSelectionStale counts a selection that referenced a vanished marker or session.
func RecordSelectionStale() {
	globalManager.selectionsStale.Inc()
}

// RecordSelectionDuplicate counts a duplicate selection event id.
func RecordSelectionDuplicate() {
	globalManager.selectionsDuplicate.Inc()
}

// Snapshot fan-out.

// AddStreamSubscribers adjusts the open subscription gauge by delta.
func AddStreamSubscribers(delta int) {
	globalManager.streamSubscribers.Add(float64(delta))
}

// RecordSnapshotDropped counts a snapshot skipped for a slow subscriber.
func RecordSnapshotDropped() {
	globalManager.snapshotsDropped.Inc()
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets queue utilization (0-1).
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueDropped counts a selection lost between dequeue and hand-off.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// RecordQueueProcessingLatency records enqueue latency in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Workers.

// UpdateWorkerActiveCount sets the number of running selection workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records selection apply latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a selection a worker failed to apply.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP and errors.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error attributed to a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
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

// RefreshInterval reports how often periodic gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// PrimeKinds creates the per-kind series of the global manager at zero, so
// dashboards show every widget kind before its first mount.
func PrimeKinds(kinds ...string) {
	globalManager.prime(kinds)
}

func (m *Manager) prime(kinds []string) {
	for _, k := range kinds {
		m.widgetsMounted.WithLabelValues(k)
		m.widgetsActive.WithLabelValues(k)
		m.selectionsApplied.WithLabelValues(k)
		m.widgetTicks.WithLabelValues(k, "refresh")
		m.widgetTicks.WithLabelValues(k, "narrate")
	}
}
