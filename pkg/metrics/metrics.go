// Package metrics provides Prometheus instrumentation for the file server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for command and transfer counters.
const (
	OutcomeOK   = "ok"
	OutcomeFail = "fail"
)

// Metrics tracks server-wide Prometheus metrics.
//
// All metrics use the ftpfs_ prefix. Counters are cheap enough to update
// inline on the session hot path.
type Metrics struct {
	// ConnectionsActive tracks sessions currently being served.
	ConnectionsActive prometheus.Gauge

	// ConnectionsAccepted counts connections admitted past the ceiling.
	ConnectionsAccepted prometheus.Counter

	// ConnectionsRefused counts connections turned away at the ceiling.
	ConnectionsRefused prometheus.Counter

	// CommandsTotal counts protocol commands by verb and outcome.
	CommandsTotal *prometheus.CounterVec

	// TransferBytes counts payload bytes moved by direction ("upload"
	// or "download"), completed transfers only.
	TransferBytes *prometheus.CounterVec

	// TransferDuration tracks completed transfer latency by direction.
	TransferDuration *prometheus.HistogramVec

	// AuthAttempts counts LOGIN and REGISTER attempts by outcome.
	AuthAttempts *prometheus.CounterVec
}

// New creates server metrics and registers them on reg.
//
// Panics if registration fails (expected during initialization only).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ftpfs_connections_active",
				Help: "Current number of client sessions being served",
			},
		),
		ConnectionsAccepted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ftpfs_connections_accepted_total",
				Help: "Total client connections admitted",
			},
		),
		ConnectionsRefused: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ftpfs_connections_refused_total",
				Help: "Total client connections refused at the admission ceiling",
			},
		),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftpfs_commands_total",
				Help: "Total protocol commands by verb and outcome",
			},
			[]string{"verb", "outcome"},
		),
		TransferBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftpfs_transfer_bytes_total",
				Help: "Total payload bytes moved in completed transfers by direction",
			},
			[]string{"direction"},
		),
		TransferDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ftpfs_transfer_duration_seconds",
				Help:    "Completed transfer duration in seconds by direction",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"direction"},
		),
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftpfs_auth_attempts_total",
				Help: "Total LOGIN and REGISTER attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		m.ConnectionsActive,
		m.ConnectionsAccepted,
		m.ConnectionsRefused,
		m.CommandsTotal,
		m.TransferBytes,
		m.TransferDuration,
		m.AuthAttempts,
	)

	return m
}

// RecordCommand records a handled protocol command.
func (m *Metrics) RecordCommand(verb string, ok bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFail
	}
	m.CommandsTotal.WithLabelValues(verb, outcome).Inc()
}

// RecordTransfer records a completed transfer.
func (m *Metrics) RecordTransfer(direction string, bytes int64, seconds float64) {
	if m == nil {
		return
	}
	m.TransferBytes.WithLabelValues(direction).Add(float64(bytes))
	m.TransferDuration.WithLabelValues(direction).Observe(seconds)
}

// RecordAuth records an authentication attempt.
func (m *Metrics) RecordAuth(ok bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFail
	}
	m.AuthAttempts.WithLabelValues(outcome).Inc()
}

// ConnectionOpened records an admitted connection. Safe on a nil receiver.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.ConnectionsAccepted.Inc()
	m.ConnectionsActive.Inc()
}

// ConnectionClosed records a finished session. Safe on a nil receiver.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Dec()
}

// ConnectionRefused records a connection rejected at the ceiling.
func (m *Metrics) ConnectionRefused() {
	if m == nil {
		return
	}
	m.ConnectionsRefused.Inc()
}
