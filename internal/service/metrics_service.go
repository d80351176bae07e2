package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/id-portal/pkg/jobs"
)

// MetricsService encapsulates Prometheus instrumentation for the portal.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	registryTotal    *prometheus.CounterVec
	registryDuration *prometheus.HistogramVec
	receiptJobs      *prometheus.CounterVec
	lostIDStages     *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors on a private registry.
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

	registryTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_requests_total",
		Help: "Registry API calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	registryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "registry_request_duration_seconds",
		Help:    "Latency of registry API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	receiptJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_jobs_total",
		Help: "Waiting-card generation attempts by outcome",
	}, []string{"outcome"})

	lostIDStages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lostid_flow_transitions_total",
		Help: "Lost-ID flow transitions by target stage",
	}, []string{"stage"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, registryTotal, registryDuration, receiptJobs, lostIDStages, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		registryTotal:    registryTotal,
		registryDuration: registryDuration,
		receiptJobs:      receiptJobs,
		lostIDStages:     lostIDStages,
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

// Registry exposes the collector registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveRegistryCall records one registry API call.
func (m *MetricsService) ObserveRegistryCall(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.registryTotal.WithLabelValues(endpoint, outcome).Inc()
	m.registryDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveReceiptJob records a waiting-card job outcome.
func (m *MetricsService) ObserveReceiptJob(_ jobs.Job, outcome jobs.Outcome, _ error) {
	if m == nil {
		return
	}
	m.receiptJobs.WithLabelValues(string(outcome)).Inc()
}

// ObserveFlowTransition counts lost-ID flows reaching stage.
func (m *MetricsService) ObserveFlowTransition(stage string) {
	if m == nil {
		return
	}
	m.lostIDStages.WithLabelValues(stage).Inc()
}
