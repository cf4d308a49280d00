package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// several servers (or tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Filesystem metrics
	FSOperations *prometheus.CounterVec
	FSUndo       *prometheus.CounterVec

	// Shell metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	SessionsActive  prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON health endpoint
type Snapshot struct {
	TotalRequests  int64 `json:"total_requests"`
	TotalErrors    int64 `json:"total_errors"`
	TotalCommands  int64 `json:"total_commands"`
	FailedCommands int64 `json:"failed_commands"`
	FSMutations    int64 `json:"fs_mutations"`
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfsd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vfsd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		FSOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfsd_fs_operations_total",
				Help: "Total number of filesystem mutations by type and outcome",
			},
			[]string{"op", "status"},
		),
		FSUndo: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfsd_fs_undo_total",
				Help: "Total number of undo attempts by outcome",
			},
			[]string{"status"},
		),

		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfsd_shell_commands_total",
				Help: "Total number of shell commands executed",
			},
			[]string{"command", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vfsd_shell_command_duration_seconds",
				Help:    "Shell command duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 2.5},
			},
			[]string{"command"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "vfsd_terminal_sessions_active",
				Help: "Number of open terminal sessions",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "vfsd_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfsd_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vfsd_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (used by tests to gather values)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status >= 400 {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records a filesystem mutation attempt
func (m *Metrics) RecordOperation(op string, ok bool) {
	m.FSOperations.WithLabelValues(op, statusLabel(ok)).Inc()
	if ok {
		m.mu.Lock()
		m.snapshot.FSMutations++
		m.mu.Unlock()
	}
}

// RecordUndo records an undo attempt
func (m *Metrics) RecordUndo(ok bool) {
	m.FSUndo.WithLabelValues(statusLabel(ok)).Inc()
}

// RecordCommand records a shell command execution
func (m *Metrics) RecordCommand(command string, exitCode int, duration time.Duration) {
	m.Commands.WithLabelValues(command, statusLabel(exitCode == 0)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalCommands++
	if exitCode != 0 {
		m.snapshot.FailedCommands++
	}
	m.mu.Unlock()
}

// SetSessionsActive sets the number of open terminal sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Uptime returns time since the collector was created
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
