package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gusamyky/ftpfs/pkg/store/models"
)

func TestWrite(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	records := []*models.HistoryRecord{
		{ID: 1, OwnerID: "client-1", Operation: "LOGIN_OK", OccurredAt: ts},
		{ID: 2, OwnerID: "client-1", Operation: "UPLOAD_OK: notes.txt", OccurredAt: ts.Add(time.Minute)},
	}

	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (header + 2), got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "id,clientId,operation,timestamp" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][1] != "client-1" || rows[1][2] != "LOGIN_OK" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	if rows[2][3] != "2024-03-01T12:31:00Z" {
		t.Errorf("unexpected timestamp: %q", rows[2][3])
	}
}

func TestWriteEscapesFields(t *testing.T) {
	records := []*models.HistoryRecord{
		{ID: 7, OwnerID: "c", Operation: `UPLOAD_OK: weird,"name".txt`, OccurredAt: time.Now()},
	}

	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}
	if rows[1][2] != `UPLOAD_OK: weird,"name".txt` {
		t.Errorf("field not round-tripped: %q", rows[1][2])
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "id,clientId,operation,timestamp" {
		t.Errorf("expected header only, got %q", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	records := []*models.HistoryRecord{
		{ID: 1, OwnerID: "c", Operation: "ECHO_OK", OccurredAt: time.Now()},
	}

	path, err := WriteFile(dir, "alice", records)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if path != filepath.Join(dir, "report_alice.csv") {
		t.Errorf("unexpected path: %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "id,clientId,operation,timestamp\n") {
		t.Errorf("report missing header: %q", string(data))
	}
}
