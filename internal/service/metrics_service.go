package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the engine.
// All observers are nil-receiver safe so callers never have to guard.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	eligibilityQueries *prometheus.CounterVec
	enrollmentTotal    *prometheus.CounterVec
	sweepTransitions   prometheus.Counter
	sweepDuration      prometheus.Histogram
}

// NewMetricsService registers the engine's Prometheus collectors.
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

	eligibilityQueries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eligibility_queries_total",
		Help: "Availability computations, labelled by cache outcome",
	}, []string{"cache"})

	enrollmentTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_requests_total",
		Help: "Enrollment validation outcomes by rejection reason",
	}, []string{"outcome"})

	sweepTransitions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "incomplete_sweep_transitions_total",
		Help: "Records moved from inc to repeat_required by the lifecycle sweep",
	})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "incomplete_sweep_duration_seconds",
		Help:    "Duration of lifecycle sweep runs",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, eligibilityQueries, enrollmentTotal, sweepTransitions, sweepDuration, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		eligibilityQueries: eligibilityQueries,
		enrollmentTotal:    enrollmentTotal,
		sweepTransitions:   sweepTransitions,
		sweepDuration:      sweepDuration,
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
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveEligibilityQuery counts one availability computation.
func (m *MetricsService) ObserveEligibilityQuery(cacheHit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	m.eligibilityQueries.WithLabelValues(label).Inc()
}

// ObserveEnrollment counts one enrollment attempt by outcome.
func (m *MetricsService) ObserveEnrollment(outcome string) {
	if m == nil {
		return
	}
	m.enrollmentTotal.WithLabelValues(outcome).Inc()
}

// ObserveSweep records one sweep run.
func (m *MetricsService) ObserveSweep(transitioned int, duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepTransitions.Add(float64(transitioned))
	m.sweepDuration.Observe(duration.Seconds())
}
