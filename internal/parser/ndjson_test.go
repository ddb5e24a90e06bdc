package parser

import (
	"testing"

	"github.com/logpush-viewer/backend/internal/models"
)

const sampleLine = `{"Event":{"RayID":"ray-abc","Request":{"URL":"https://example.com/api","Method":"POST"},"Response":{"Status":200}},"EventTimestampMs":1767088800000,"EventType":"fetch","Outcome":"ok","Exceptions":[],"Logs":[{"Level":"log","Message":["handled"],"TimestampMs":1767088800123}],"ScriptName":"api-worker","ScriptTags":["prod"]}`

func TestDecodeNDJSON(t *testing.T) {
	content := sampleLine + "\n" + sampleLine + "\n"

	entries := DecodeNDJSON(content)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	e := entries[0]
	if e.ScriptName != "api-worker" {
		t.Errorf("Expected ScriptName api-worker, got %q", e.ScriptName)
	}
	if e.Event.RayID != "ray-abc" {
		t.Errorf("Expected RayID ray-abc, got %q", e.Event.RayID)
	}
	if e.URL() != "https://example.com/api" {
		t.Errorf("URL mismatch: %q", e.URL())
	}
	if e.Status() != 200 {
		t.Errorf("Expected status 200, got %d", e.Status())
	}
	if e.EventTimestampMs != 1767088800000 {
		t.Errorf("Timestamp mismatch: %d", e.EventTimestampMs)
	}
	if len(e.Logs) != 1 || e.Logs[0].Text() != "handled" {
		t.Errorf("Logs mismatch: %+v", e.Logs)
	}
	if len(e.ScriptTags) != 1 || e.ScriptTags[0] != "prod" {
		t.Errorf("ScriptTags mismatch: %+v", e.ScriptTags)
	}
}

func TestDecodeNDJSONSkipsMalformedLines(t *testing.T) {
	content := "not json at all\n" +
		sampleLine + "\n" +
		`{"truncated": "obj` + "\n" +
		`[1,2,3]` + "\n" +
		`"just a string"` + "\n" +
		sampleLine + "\n" +
		"{{{{\n"

	entries := DecodeNDJSON(content)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries from interleaved good/bad lines, got %d", len(entries))
	}
}

func TestDecodeNDJSONPreservesLineOrder(t *testing.T) {
	content := `{"ScriptName":"first"}` + "\n" +
		"garbage\n" +
		`{"ScriptName":"second"}` + "\n" +
		`{"ScriptName":"third"}`

	entries := DecodeNDJSON(content)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].ScriptName != want {
			t.Errorf("Entry %d: expected %q, got %q", i, want, entries[i].ScriptName)
		}
	}
}

func TestDecodeNDJSONEmptyInput(t *testing.T) {
	if entries := DecodeNDJSON(""); len(entries) != 0 {
		t.Errorf("Expected no entries for empty input, got %d", len(entries))
	}
	if entries := DecodeNDJSON("\n  \n\t\n"); len(entries) != 0 {
		t.Errorf("Expected no entries for whitespace input, got %d", len(entries))
	}
}

func TestDecodeNDJSONDefaults(t *testing.T) {
	entries := DecodeNDJSON(`{}`)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.EventType != models.DefaultEventType {
		t.Errorf("Expected default EventType %q, got %q", models.DefaultEventType, e.EventType)
	}
	if e.Outcome != models.OutcomeOK {
		t.Errorf("Expected default Outcome ok, got %q", e.Outcome)
	}
	if e.ScriptName != "" || e.URL() != "" || e.Status() != 0 || e.EventTimestampMs != 0 {
		t.Errorf("Expected zero defaults, got %+v", e)
	}
	if len(e.Exceptions) != 0 || len(e.Logs) != 0 || len(e.ScriptTags) != 0 {
		t.Errorf("Expected empty collections, got %+v", e)
	}
	if e.ScriptVersion != nil || e.CPUTimeMs != nil || e.WallTimeMs != nil {
		t.Errorf("Expected unset optionals, got %+v", e)
	}
}

func TestDecodeNDJSONMistypedFieldsDefault(t *testing.T) {
	// A wrong-typed field defaults instead of dropping the line.
	content := `{"ScriptName":123,"Outcome":["ok"],"EventTimestampMs":"soon","Event":"nope","Logs":"none"}`

	entries := DecodeNDJSON(content)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.ScriptName != "" {
		t.Errorf("Expected defaulted ScriptName, got %q", e.ScriptName)
	}
	if e.Outcome != models.OutcomeOK {
		t.Errorf("Expected defaulted Outcome, got %q", e.Outcome)
	}
	if e.EventTimestampMs != 0 {
		t.Errorf("Expected defaulted timestamp, got %d", e.EventTimestampMs)
	}
	if e.URL() != "" || e.Status() != 0 {
		t.Errorf("Expected defaulted event, got %+v", e.Event)
	}
	if len(e.Logs) != 0 {
		t.Errorf("Expected no logs, got %+v", e.Logs)
	}
}

func TestDecodeNDJSONOptionalFields(t *testing.T) {
	content := `{"ScriptVersion":{"Id":"v12"},"CPUTimeMs":14,"WallTimeMs":230,"DispatchNamespace":"ns","Entrypoint":"default"}`

	entries := DecodeNDJSON(content)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.ScriptVersion == nil || e.ScriptVersion.ID != "v12" {
		t.Errorf("ScriptVersion mismatch: %+v", e.ScriptVersion)
	}
	if e.CPUTimeMs == nil || *e.CPUTimeMs != 14 {
		t.Errorf("CPUTimeMs mismatch: %v", e.CPUTimeMs)
	}
	if e.WallTimeMs == nil || *e.WallTimeMs != 230 {
		t.Errorf("WallTimeMs mismatch: %v", e.WallTimeMs)
	}
	if e.DispatchNamespace != "ns" || e.Entrypoint != "default" {
		t.Errorf("Dispatch fields mismatch: %+v", e)
	}
}

func TestDecodeNDJSONLogLevelDefault(t *testing.T) {
	content := `{"Logs":[{"Message":["no level given"]}]}`

	entries := DecodeNDJSON(content)
	if len(entries) != 1 || len(entries[0].Logs) != 1 {
		t.Fatalf("Unexpected decode result: %+v", entries)
	}
	if entries[0].Logs[0].Level != models.DefaultLogLevel {
		t.Errorf("Expected default level %q, got %q", models.DefaultLogLevel, entries[0].Logs[0].Level)
	}
}
