package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the moderation
// pipeline and the HTTP layer.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	decisionTotal   *prometheus.CounterVec
	denialTotal     *prometheus.CounterVec
	rateLimitedTotal prometheus.Counter
	platformLatency *prometheus.HistogramVec
}

// NewMetricsService registers the core Prometheus collectors.
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

	decisionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_actions_total",
		Help: "Completed moderation actions by action and outcome",
	}, []string{"action", "outcome"})

	denialTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "permission_denials_total",
		Help: "Permission policy denials by reason code",
	}, []string{"reason"})

	rateLimitedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "platform_rate_limited_total",
		Help: "Platform actions rejected by the window limiter",
	})

	platformLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "platform_request_duration_seconds",
		Help:    "Latency of streaming platform API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	registry.MustRegister(requestDuration, requestTotal, decisionTotal, denialTotal, rateLimitedTotal, platformLatency)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		decisionTotal:   decisionTotal,
		denialTotal:     denialTotal,
		rateLimitedTotal: rateLimitedTotal,
		platformLatency: platformLatency,
	}
}

// Handler exposes the /metrics endpoint handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one handled HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordDecision counts a completed moderation action.
func (s *MetricsService) RecordDecision(action, outcome string) {
	if s == nil {
		return
	}
	s.decisionTotal.WithLabelValues(action, outcome).Inc()
}

// RecordDenial counts a permission policy denial.
func (s *MetricsService) RecordDenial(reason string) {
	if s == nil {
		return
	}
	s.denialTotal.WithLabelValues(reason).Inc()
}

// RecordRateLimited counts a limiter rejection.
func (s *MetricsService) RecordRateLimited() {
	if s == nil {
		return
	}
	s.rateLimitedTotal.Inc()
}

// ObservePlatformCall records the latency of one platform API call.
func (s *MetricsService) ObservePlatformCall(operation string, duration time.Duration) {
	if s == nil {
		return
	}
	s.platformLatency.WithLabelValues(operation).Observe(duration.Seconds())
}
