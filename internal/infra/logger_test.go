package infra

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerProductionEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("production", &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("job_id", "job-1").Msg("visible")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "visible" {
		t.Fatalf("message = %v, want visible", entry["message"])
	}
	if entry["service"] != "viralvideos" {
		t.Fatalf("service = %v, want viralvideos", entry["service"])
	}
	if entry["job_id"] != "job-1" {
		t.Fatalf("job_id = %v, want job-1", entry["job_id"])
	}
}

func TestComponentNilLogger(t *testing.T) {
	l := Component(nil, "worker")
	l.Info().Msg("discarded")
}
