// Package metrics provides Prometheus metrics for the pushlog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pushlog"

var registry = prometheus.NewRegistry()

// GetRegistry returns the registry all service metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return registry
}

var (
	// Ingestion metrics.
	webhooksReceived = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhooks_received_total",
		Help:      "Webhook requests received, by provider.",
	}, []string{"provider"})
	webhookPings = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_pings_total",
		Help:      "Provider ping events acknowledged without translation.",
	})
	eventsAppended = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_appended_total",
		Help:      "Canonical events appended to the event store.",
	})
	translationErrors = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translation_errors_total",
		Help:      "Webhook payloads a translator rejected, by provider.",
	}, []string{"provider"})

	// Event store metrics.
	storeRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_requests_total",
		Help:      "Event store calls, by call and outcome.",
	}, []string{"call", "outcome"})
	storeRequestDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_request_duration_ms",
		Help:      "Event store call latency in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"call"})
	appendRetries = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "append_retries_total",
		Help:      "Retries of transient append failures.",
	})
	projectionNotFound = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projection_not_found_total",
		Help:      "Projection reads that found no materialized state.",
	}, []string{"projection"})

	// HTTP metrics.
	httpRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	httpRequestDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"endpoint", "method", "status"})

	// System metrics.
	systemMemoryUsage = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap bytes.",
	})
	systemGoroutines = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "system_goroutines",
		Help:      "Current goroutine count.",
	})
)

// RecordWebhookReceived counts an inbound webhook for a provider.
func RecordWebhookReceived(provider string) {
	webhooksReceived.WithLabelValues(provider).Inc()
}

// RecordWebhookPing counts a ping acknowledged without translation.
func RecordWebhookPing() {
	webhookPings.Inc()
}

// RecordEventsAppended counts canonical events appended to the store.
func RecordEventsAppended(n int) {
	eventsAppended.Add(float64(n))
}

// RecordTranslationError counts a rejected webhook payload.
func RecordTranslationError(provider string) {
	translationErrors.WithLabelValues(provider).Inc()
}

// RecordStoreRequest counts an event store call with its outcome.
func RecordStoreRequest(call, outcome string) {
	storeRequests.WithLabelValues(call, outcome).Inc()
}

// ObserveStoreRequestDuration records event store call latency.
func ObserveStoreRequestDuration(call string, ms float64) {
	storeRequestDuration.WithLabelValues(call).Observe(ms)
}

// RecordAppendRetry counts a retried transient append failure.
func RecordAppendRetry() {
	appendRetries.Inc()
}

// RecordProjectionNotFound counts a projection read with no state.
func RecordProjectionNotFound(projection string) {
	projectionNotFound.WithLabelValues(projection).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	systemGoroutines.Set(float64(n))
}
