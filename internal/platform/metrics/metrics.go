package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the timeline service.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	errorsTotal           prometheus.Counter
	sessionsOpenedTotal   prometheus.Counter
	sessionsClosedTotal   prometheus.Counter
	sessionsReapedTotal   prometheus.Counter
	pageTransitionsTotal  *prometheus.CounterVec
	audioSwitchesTotal    *prometheus.CounterVec
	audioPlayFailureTotal prometheus.Counter
	activeSessions        prometheus.Gauge
	requestDuration       *prometheus.HistogramVec
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timeline_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timeline_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		sessionsOpenedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timeline_sessions_opened_total",
			Help: "Total number of sessions opened",
		}),
		sessionsClosedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timeline_sessions_closed_total",
			Help: "Total number of sessions closed by the client",
		}),
		sessionsReapedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timeline_sessions_reaped_total",
			Help: "Total number of idle sessions closed by the reaper",
		}),
		pageTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timeline_page_transitions_total",
			Help: "Accepted page transitions by input cause",
		}, []string{"cause"}),
		audioSwitchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timeline_audio_switches_total",
			Help: "Background track set switches by source",
		}, []string{"source"}),
		audioPlayFailureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timeline_audio_play_failures_total",
			Help: "Total number of failed or reported playback attempts",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timeline_active_sessions",
			Help: "Number of open sessions",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timeline_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.sessionsOpenedTotal,
		m.sessionsClosedTotal,
		m.sessionsReapedTotal,
		m.pageTransitionsTotal,
		m.audioSwitchesTotal,
		m.audioPlayFailureTotal,
		m.activeSessions,
		m.requestDuration,
	)
	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncSessionsOpened increments the sessions opened counter.
func (m *Metrics) IncSessionsOpened() {
	m.sessionsOpenedTotal.Inc()
}

// IncSessionsClosed increments the sessions closed counter.
func (m *Metrics) IncSessionsClosed() {
	m.sessionsClosedTotal.Inc()
}

// AddSessionsReaped adds n to the reaped sessions counter.
func (m *Metrics) AddSessionsReaped(n int) {
	m.sessionsReapedTotal.Add(float64(n))
}

// IncPageTransitions counts one transition caused by cause.
func (m *Metrics) IncPageTransitions(cause string) {
	m.pageTransitionsTotal.WithLabelValues(cause).Inc()
}

// IncAudioSwitches counts one track set switch to source.
func (m *Metrics) IncAudioSwitches(source string) {
	m.audioSwitchesTotal.WithLabelValues(source).Inc()
}

// IncAudioPlayFailures increments the playback failure counter.
func (m *Metrics) IncAudioPlayFailures() {
	m.audioPlayFailureTotal.Inc()
}

// SetActiveSessions sets the active sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// ObserveRequest records the latency of one request.
func (m *Metrics) ObserveRequest(method, route string, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. active sessions).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
