// Package metrics exposes the gateway's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for backend requests.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics owns the registry and the collectors the gateway reports.
type Metrics struct {
	registry *prometheus.Registry

	backendRequests  *prometheus.CounterVec
	pollTicks        prometheus.Counter
	pollSkipped      prometheus.Counter
	guessSubmissions prometheus.Counter
}

// New builds a registry with process/go collectors plus the gateway's own.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordtreasure_backend_requests_total",
			Help: "Backend REST calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		pollTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordtreasure_ranking_poll_ticks_total",
			Help: "Live-ranking poll ticks that issued a fetch.",
		}),
		pollSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordtreasure_ranking_poll_skipped_total",
			Help: "Live-ranking poll ticks skipped because a fetch was in flight.",
		}),
		guessSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordtreasure_guess_submissions_total",
			Help: "Guesses accepted for submission to the backend.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.backendRequests,
		m.pollTicks,
		m.pollSkipped,
		m.guessSubmissions,
	)
	return m
}

// ObserveBackendRequest records one outbound call.
func (m *Metrics) ObserveBackendRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(endpoint, outcome).Inc()
}

// PollTick records a poll tick that actually fetched.
func (m *Metrics) PollTick() {
	if m == nil {
		return
	}
	m.pollTicks.Inc()
}

// PollSkipped records a poll tick dropped by the in-flight guard.
func (m *Metrics) PollSkipped() {
	if m == nil {
		return
	}
	m.pollSkipped.Inc()
}

// GuessSubmitted records a guess that passed local validation.
func (m *Metrics) GuessSubmitted() {
	if m == nil {
		return
	}
	m.guessSubmissions.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
