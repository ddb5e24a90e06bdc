package models

import (
	"testing"
	"time"
)

func TestLogFileFromKey(t *testing.T) {
	modified := time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC)

	f := LogFileFromKey("production/20260111/1000_2000_abcd.log.gz", 1234, modified)
	if f.StartTime != "1000" {
		t.Errorf("Expected StartTime 1000, got %q", f.StartTime)
	}
	if f.EndTime != "2000" {
		t.Errorf("Expected EndTime 2000, got %q", f.EndTime)
	}
	if f.Key != "production/20260111/1000_2000_abcd.log.gz" {
		t.Errorf("Key mismatch: %q", f.Key)
	}
	if f.Size != 1234 {
		t.Errorf("Expected Size 1234, got %d", f.Size)
	}
	if !f.LastModified.Equal(modified) {
		t.Errorf("LastModified mismatch: %v", f.LastModified)
	}
}

func TestLogFileFromKeyNoUnderscores(t *testing.T) {
	f := LogFileFromKey("file.log.gz", 0, time.Time{})
	if f.StartTime != "" || f.EndTime != "" {
		t.Errorf("Expected empty time range, got %q / %q", f.StartTime, f.EndTime)
	}
}

func TestLogFileFromKeySingleUnderscore(t *testing.T) {
	f := LogFileFromKey("production/20260111/justhash.log.gz", 0, time.Time{})
	if f.StartTime != "" || f.EndTime != "" {
		t.Errorf("Expected empty time range, got %q / %q", f.StartTime, f.EndTime)
	}
}

func TestHasErrorsOutcomeException(t *testing.T) {
	// Outcome alone is enough, even with no exceptions or logs.
	e := LogEntry{Outcome: OutcomeException}
	if !e.HasErrors() {
		t.Error("Expected HasErrors true for exception outcome")
	}
}

func TestHasErrorsWarnLog(t *testing.T) {
	e := LogEntry{
		Outcome: OutcomeOK,
		Logs:    []LogMessage{{Level: "warn", Message: []string{"slow"}}},
	}
	if !e.HasErrors() {
		t.Error("Expected HasErrors true for warn-level log")
	}
}

func TestHasErrorsExceptionList(t *testing.T) {
	e := LogEntry{
		Outcome:    OutcomeOK,
		Exceptions: []LogException{{Name: "TypeError", Message: "x is undefined"}},
	}
	if !e.HasErrors() {
		t.Error("Expected HasErrors true when exceptions present")
	}
}

func TestHasErrorsCleanEntry(t *testing.T) {
	e := LogEntry{
		Outcome: OutcomeOK,
		Logs: []LogMessage{
			{Level: "log", Message: []string{"request handled"}},
			{Level: "log", Message: []string{"done"}},
		},
	}
	if e.HasErrors() {
		t.Error("Expected HasErrors false for ok entry with log-level messages")
	}
}

func TestLogText(t *testing.T) {
	e := LogEntry{
		Logs: []LogMessage{
			{Level: "log", Message: []string{"user", "42", "logged in"}},
			{Level: "error", Message: []string{"boom"}},
		},
	}
	want := "user 42 logged in\nboom"
	if got := e.LogText(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	empty := LogEntry{}
	if empty.LogText() != "" {
		t.Errorf("Expected empty log text, got %q", empty.LogText())
	}
}

func TestTimestamp(t *testing.T) {
	e := LogEntry{EventTimestampMs: 1767088800000}
	got := e.Timestamp()
	want := time.UnixMilli(1767088800000).UTC()
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got.Location() != time.UTC {
		t.Errorf("Expected UTC timestamp, got %v", got.Location())
	}
}

func TestDerivedAccessors(t *testing.T) {
	e := LogEntry{
		Event: TraceEvent{
			RayID:    "ray-1",
			Request:  EventRequest{URL: "https://example.com/a", Method: "GET"},
			Response: EventResponse{Status: 503},
		},
	}
	if e.URL() != "https://example.com/a" {
		t.Errorf("URL mismatch: %q", e.URL())
	}
	if e.Status() != 503 {
		t.Errorf("Status mismatch: %d", e.Status())
	}
}
