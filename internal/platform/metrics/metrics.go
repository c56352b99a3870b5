// Package metrics exposes the pipeline's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricPipelineOutcomesTotal     = "pipeline_outcomes_total"
	MetricLedgerPostDurationSeconds = "ledger_post_duration_seconds"
	MetricReviewsPending            = "pipeline_reviews_pending"
	MetricHTTPRequestsTotal         = "http_requests_total"
)

// PipelineMetrics holds the instruments on a private registry.
// All methods are safe to call on a nil receiver, which records nothing.
type PipelineMetrics struct {
	registry *prometheus.Registry

	outcomesTotal      *prometheus.CounterVec
	ledgerPostDuration *prometheus.HistogramVec
	reviewsPending     prometheus.Gauge
	httpRequestsTotal  *prometheus.CounterVec
}

// New creates the instruments and registers them, together with the Go and process collectors.
func New() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	m := &PipelineMetrics{
		registry: registry,
		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricPipelineOutcomesTotal,
				Help: "Terminal pipeline outcomes by state and outcome kind.",
			},
			[]string{"state", "outcome"},
		),
		ledgerPostDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricLedgerPostDurationSeconds,
				Help:    "Latency of journal entry postings to the ledger.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		reviewsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricReviewsPending,
			Help: "Review requests opened by this process and not yet decided or cancelled.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "HTTP requests served, by route and status code.",
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(
		m.outcomesTotal,
		m.ledgerPostDuration,
		m.reviewsPending,
		m.httpRequestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOutcome counts a task reaching a terminal state.
func (m *PipelineMetrics) ObserveOutcome(state domain.PipelineState, outcome domain.OutcomeKind) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(string(state), string(outcome)).Inc()
}

// ObserveLedgerPost records the latency of one posting; result is "success", "rejected" or "error".
func (m *PipelineMetrics) ObserveLedgerPost(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ledgerPostDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ReviewOpened increments the pending reviews gauge.
func (m *PipelineMetrics) ReviewOpened() {
	if m == nil {
		return
	}
	m.reviewsPending.Inc()
}

// ReviewClosed decrements the pending reviews gauge.
func (m *PipelineMetrics) ReviewClosed() {
	if m == nil {
		return
	}
	m.reviewsPending.Dec()
}

// ObserveHTTPRequest counts one served request.
func (m *PipelineMetrics) ObserveHTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
}

// Registry returns the underlying registry.
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
