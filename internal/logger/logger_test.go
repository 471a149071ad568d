package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func TestSetLevel(t *testing.T) {
	defer InitWithWriter(&bytes.Buffer{}, "INFO", "text")

	t.Run("debug suppressed at info level", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "INFO", "text")

		Debug("hidden")
		Info("visible")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug message should be suppressed at INFO level")
		}
		if !strings.Contains(out, "visible") {
			t.Error("info message should be emitted at INFO level")
		}
	})

	t.Run("debug emitted at debug level", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "DEBUG", "text")

		Debug("now visible")
		if !strings.Contains(buf.String(), "now visible") {
			t.Error("debug message should be emitted at DEBUG level")
		}
	})

	t.Run("invalid level ignored", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "INFO", "text")
		SetLevel("VERBOSE")

		Info("still works")
		if !strings.Contains(buf.String(), "still works") {
			t.Error("logger should keep previous level on invalid input")
		}
	})
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")
	defer InitWithWriter(&bytes.Buffer{}, "INFO", "text")

	Info("connection accepted", KeyAddress, "127.0.0.1:9999", KeyActive, 3)

	out := buf.String()
	if !strings.Contains(out, "[INFO] connection accepted") {
		t.Errorf("unexpected text output: %q", out)
	}
	if !strings.Contains(out, "address=127.0.0.1:9999") {
		t.Errorf("missing address attr: %q", out)
	}
	if !strings.Contains(out, "active=3") {
		t.Errorf("missing active attr: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json")
	defer InitWithWriter(&bytes.Buffer{}, "INFO", "text")

	Info("upload complete", KeyFilename, "f.txt", KeySize, 1024)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if record["msg"] != "upload complete" {
		t.Errorf("expected msg field, got %v", record["msg"])
	}
	if record["filename"] != "f.txt" {
		t.Errorf("expected filename field, got %v", record["filename"])
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")
	defer InitWithWriter(&bytes.Buffer{}, "INFO", "text")

	l := With(KeyAddress, "10.0.0.1:1234")
	l.Info("line read")

	if !strings.Contains(buf.String(), "address=10.0.0.1:1234") {
		t.Errorf("pre-bound attr missing: %q", buf.String())
	}
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")
	defer InitWithWriter(&bytes.Buffer{}, "INFO", "text")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Info("concurrent", "n", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Count(buf.String(), "\n")
	if lines != 20 {
		t.Errorf("expected 20 lines, got %d", lines)
	}
}
