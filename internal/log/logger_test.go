package log

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events := []LogEvent{
		{Event: EventSessionCreated, SessionID: "1700000000000", Kind: "direct"},
		{Event: EventTurnSent, SessionID: "1700000000000", Endpoint: "initial-input", Stage: "scoping"},
		{Event: EventTurnFailed, SessionID: "1700000000000", Endpoint: "input", Error: "connection refused"},
	}
	for _, e := range events {
		if err := logger.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	for i := range events {
		if got[i].Event != events[i].Event {
			t.Errorf("event %d: got %q, want %q", i, got[i].Event, events[i].Event)
		}
		if got[i].Time.IsZero() {
			t.Errorf("event %d: Time not set on append", i)
		}
	}
	if got[2].Error != "connection refused" {
		t.Errorf("got error %q, want %q", got[2].Error, "connection refused")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestAppendDoesNotTruncate(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	if err := logger.Append(LogEvent{Event: EventSessionCreated}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// A second logger over the same directory must append, not restart.
	logger2, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if err := logger2.Append(LogEvent{Event: EventSessionDeleted}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := logger2.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if _, err := os.Stat(filepath.Join(dir, "log.jsonl")); err != nil {
		t.Errorf("log file missing: %v", err)
	}
}
