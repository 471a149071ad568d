package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConnectionCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.ConnectionRefused()

	if got := testutil.ToFloat64(m.ConnectionsActive); got != 1 {
		t.Errorf("expected 1 active connection, got %v", got)
	}
	if got := testutil.ToFloat64(m.ConnectionsAccepted); got != 2 {
		t.Errorf("expected 2 accepted connections, got %v", got)
	}
	if got := testutil.ToFloat64(m.ConnectionsRefused); got != 1 {
		t.Errorf("expected 1 refused connection, got %v", got)
	}
}

func TestRecordCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordCommand("UPLOAD", true)
	m.RecordCommand("UPLOAD", true)
	m.RecordCommand("UPLOAD", false)

	if got := testutil.ToFloat64(m.CommandsTotal.WithLabelValues("UPLOAD", OutcomeOK)); got != 2 {
		t.Errorf("expected 2 ok commands, got %v", got)
	}
	if got := testutil.ToFloat64(m.CommandsTotal.WithLabelValues("UPLOAD", OutcomeFail)); got != 1 {
		t.Errorf("expected 1 failed command, got %v", got)
	}
}

func TestRecordTransfer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordTransfer("upload", 1024, 0.5)
	m.RecordTransfer("upload", 2048, 0.25)

	if got := testutil.ToFloat64(m.TransferBytes.WithLabelValues("upload")); got != 3072 {
		t.Errorf("expected 3072 bytes, got %v", got)
	}
}

func TestNilReceiver(t *testing.T) {
	// A nil *Metrics disables instrumentation without nil checks at call sites.
	var m *Metrics
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.ConnectionRefused()
	m.RecordCommand("ECHO", true)
	m.RecordTransfer("download", 1, 1)
	m.RecordAuth(false)
}
