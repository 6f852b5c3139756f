package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodgame"

// MetricsCollector handles metrics collection and reporting
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

// NewMetricsCollector creates a new metrics collector on its own registry
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	gamesStarted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "started_total",
			Help:      "Total number of games started.",
		},
	)

	ordersGenerated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "generated_total",
			Help:      "Total number of orders generated.",
		},
	)

	ordersResolved := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "resolved_total",
			Help:      "Orders resolved by terminal status.",
		},
		[]string{"status"},
	)

	violations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "violations_total",
			Help:      "Violations detected in failed orders.",
		},
		[]string{"violation"},
	)

	satisfaction := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "customer_satisfaction",
			Help:      "Customer satisfaction per resolved order.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"status"},
	)

	generations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Generation requests by generator and result.",
		},
		[]string{"kind", "result"},
	)

	generationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Duration of generation calls including fallback.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"kind"},
	)

	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "cache_lookups_total",
			Help:      "Menu and consequence cache lookups.",
		},
		[]string{"cache", "result"},
	)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	metrics := map[string]prometheus.Collector{
		"games_started":       gamesStarted,
		"orders_generated":    ordersGenerated,
		"orders_resolved":     ordersResolved,
		"violations":          violations,
		"satisfaction":        satisfaction,
		"generations":         generations,
		"generation_duration": generationDuration,
		"cache_lookups":       cacheLookups,
		"http_requests":       httpRequests,
		"http_duration":       httpDuration,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
	}
}

// Registry exposes the underlying registry
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler serves the collected metrics in the Prometheus text format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{Registry: mc.registry})
}

// RecordGameStarted counts a new game
func (mc *MetricsCollector) RecordGameStarted() {
	if counter, ok := mc.metrics["games_started"].(prometheus.Counter); ok {
		counter.Inc()
	}
}

// RecordOrderGenerated counts a new order
func (mc *MetricsCollector) RecordOrderGenerated() {
	if counter, ok := mc.metrics["orders_generated"].(prometheus.Counter); ok {
		counter.Inc()
	}
}

// RecordOrderResolved records the terminal status and satisfaction of an order
func (mc *MetricsCollector) RecordOrderResolved(status string, satisfaction float64) {
	if counter, ok := mc.metrics["orders_resolved"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(status).Inc()
	}
	if histogram, ok := mc.metrics["satisfaction"].(*prometheus.HistogramVec); ok {
		histogram.WithLabelValues(status).Observe(satisfaction)
	}
}

// RecordViolation counts a violation detected in a failed order
func (mc *MetricsCollector) RecordViolation(violation string) {
	if counter, ok := mc.metrics["violations"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(violation).Inc()
	}
}

// RecordGeneration records a generator call and whether it fell back
func (mc *MetricsCollector) RecordGeneration(kind string, fallback bool, duration time.Duration) {
	result := "ok"
	if fallback {
		result = "fallback"
	}
	if counter, ok := mc.metrics["generations"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(kind, result).Inc()
	}
	if histogram, ok := mc.metrics["generation_duration"].(*prometheus.HistogramVec); ok {
		histogram.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// RecordCacheLookup records a cache hit or miss
func (mc *MetricsCollector) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	if counter, ok := mc.metrics["cache_lookups"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(cache, result).Inc()
	}
}

// RecordHTTPRequest records one handled request
func (mc *MetricsCollector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if counter, ok := mc.metrics["http_requests"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	}
	if histogram, ok := mc.metrics["http_duration"].(*prometheus.HistogramVec); ok {
		histogram.WithLabelValues(method, path).Observe(duration.Seconds())
	}
}
