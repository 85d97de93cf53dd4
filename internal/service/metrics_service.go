package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	resolutionTotal    *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	fallbackTotal      prometheus.Counter

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetricsService registers the service's Prometheus collectors on a
// private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	resolutionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_resolutions_total",
		Help: "Presence resolutions by mode and degradation outcome",
	}, []string{"mode", "degraded"})

	resolutionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "presence_resolution_duration_seconds",
		Help:    "Duration of presence resolutions",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	fallbackTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "presence_fallback_total",
		Help: "Resolutions where the habitual tier was empty and the irregular tier answered",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, resolutionTotal, resolutionDuration, fallbackTotal, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		resolutionTotal:    resolutionTotal,
		resolutionDuration: resolutionDuration,
		fallbackTotal:      fallbackTotal,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveResolution records the outcome of one presence resolution.
func (m *MetricsService) ObserveResolution(mode models.ResolutionMode, degraded bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.resolutionTotal.WithLabelValues(string(mode), strconv.FormatBool(degraded)).Inc()
	m.resolutionDuration.WithLabelValues(string(mode)).Observe(duration.Seconds())
}

// RecordFallback counts a habitual-to-irregular fallback.
func (m *MetricsService) RecordFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
