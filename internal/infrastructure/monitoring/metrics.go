package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
// Each instance owns its registry so several stores can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics (host server)
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Envelope metrics
	EnvelopesSent     *prometheus.CounterVec
	EnvelopesReceived *prometheus.CounterVec
	EnvelopesDropped  *prometheus.CounterVec

	// Transport metrics
	TransportState      prometheus.Gauge
	TransportReconnects prometheus.Counter

	// Reactive metrics
	ReactionRuns *prometheus.CounterVec
	Flushes      prometheus.Counter

	// History metrics
	HistoryOps    *prometheus.CounterVec
	HistoryLength prometheus.Gauge

	// Host server metrics
	WindowsConnected prometheus.Gauge
	FocusChanges     prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON API
type MetricsSnapshot struct {
	EnvelopesSent     int64 `json:"envelopes_sent"`
	EnvelopesReceived int64 `json:"envelopes_received"`
	EnvelopesDropped  int64 `json:"envelopes_dropped"`
	ReactionRuns      int64 `json:"reaction_runs"`
	Commits           int64 `json:"commits"`
	Windows           int64 `json:"windows"`
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewsync_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viewsync_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		EnvelopesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewsync_envelopes_sent_total",
				Help: "Envelopes written to the channel",
			},
			[]string{"type"},
		),
		EnvelopesReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewsync_envelopes_received_total",
				Help: "Envelopes read from the channel",
			},
			[]string{"type"},
		),
		EnvelopesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewsync_envelopes_dropped_total",
				Help: "Envelopes dropped before reaching the channel",
			},
			[]string{"type", "reason"},
		),

		TransportState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewsync_transport_state",
				Help: "Current transport state (0 disconnected, 1 connecting, 2 connected, 3 closed)",
			},
		),
		TransportReconnects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "viewsync_transport_reconnects_total",
				Help: "Number of reconnect attempts",
			},
		),

		ReactionRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewsync_reaction_runs_total",
				Help: "Reaction executions by reaction name",
			},
			[]string{"reaction"},
		),
		Flushes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "viewsync_scheduler_flushes_total",
				Help: "Scheduler flushes (batched ticks that ran reactions)",
			},
		),

		HistoryOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewsync_history_operations_total",
				Help: "Edit history operations",
			},
			[]string{"op", "status"},
		),
		HistoryLength: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewsync_history_length",
				Help: "Number of snapshots in the edit history",
			},
		),

		WindowsConnected: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewsync_host_windows",
				Help: "Renderer windows connected to the host",
			},
		),
		FocusChanges: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "viewsync_host_focus_changes_total",
				Help: "Window focus updates that changed recorded state",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewsync_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}

	return m
}

// Handler exposes this collector's registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEnvelopeSent records an envelope written to the channel
func (m *Metrics) RecordEnvelopeSent(msgType string) {
	if m == nil {
		return
	}
	m.EnvelopesSent.WithLabelValues(msgType).Inc()
	m.mu.Lock()
	m.snapshot.EnvelopesSent++
	m.mu.Unlock()
}

// RecordEnvelopeReceived records an envelope read from the channel
func (m *Metrics) RecordEnvelopeReceived(msgType string) {
	if m == nil {
		return
	}
	m.EnvelopesReceived.WithLabelValues(msgType).Inc()
	m.mu.Lock()
	m.snapshot.EnvelopesReceived++
	m.mu.Unlock()
}

// RecordEnvelopeDropped records an envelope that never reached the channel
func (m *Metrics) RecordEnvelopeDropped(msgType, reason string) {
	if m == nil {
		return
	}
	m.EnvelopesDropped.WithLabelValues(msgType, reason).Inc()
	m.mu.Lock()
	m.snapshot.EnvelopesDropped++
	m.mu.Unlock()
}

// SetTransportState records the current transport state
func (m *Metrics) SetTransportState(state int) {
	if m == nil {
		return
	}
	m.TransportState.Set(float64(state))
}

// IncReconnects increments the reconnect counter
func (m *Metrics) IncReconnects() {
	if m == nil {
		return
	}
	m.TransportReconnects.Inc()
}

// RecordReactionRun records one reaction execution
func (m *Metrics) RecordReactionRun(name string) {
	if m == nil {
		return
	}
	m.ReactionRuns.WithLabelValues(name).Inc()
	m.mu.Lock()
	m.snapshot.ReactionRuns++
	m.mu.Unlock()
}

// IncFlushes increments the scheduler flush counter
func (m *Metrics) IncFlushes() {
	if m == nil {
		return
	}
	m.Flushes.Inc()
}

// RecordHistoryOp records a commit/undo/redo and the resulting history length
func (m *Metrics) RecordHistoryOp(op, status string, length int) {
	if m == nil {
		return
	}
	m.HistoryOps.WithLabelValues(op, status).Inc()
	m.HistoryLength.Set(float64(length))
	if op == "commit" {
		m.mu.Lock()
		m.snapshot.Commits++
		m.mu.Unlock()
	}
}

// SetWindows sets the number of connected windows
func (m *Metrics) SetWindows(count int) {
	if m == nil {
		return
	}
	m.WindowsConnected.Set(float64(count))
	m.mu.Lock()
	m.snapshot.Windows = int64(count)
	m.mu.Unlock()
}

// IncFocusChanges increments the focus change counter
func (m *Metrics) IncFocusChanges() {
	if m == nil {
		return
	}
	m.FocusChanges.Inc()
}

// Snapshot returns current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
