// Package parser implements decoding, filtering, aggregation, and
// presentation of logpush trace entries.
package parser

import (
	"strings"

	"github.com/valyala/fastjson"

	"github.com/logpush-viewer/backend/internal/models"
)

// DecodeNDJSON parses NDJSON content into log entries, one per line.
//
// Lines that are not valid JSON, or whose JSON is not an object, are
// silently skipped: logpush occasionally ships truncated lines at file
// boundaries, and one bad line must not lose the rest of the file.
// Output order follows input line order.
func DecodeNDJSON(content string) []models.LogEntry {
	var entries []models.LogEntry
	var p fastjson.Parser

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := p.Parse(line)
		if err != nil || v.Type() != fastjson.TypeObject {
			continue
		}
		entries = append(entries, entryFromValue(v))
	}
	return entries
}

// entryFromValue fills a LogEntry from a parsed JSON object. Recognized
// fields are copied; absent or type-mismatched fields keep their defaults.
func entryFromValue(v *fastjson.Value) models.LogEntry {
	e := models.LogEntry{
		EventTimestampMs:  v.GetInt64("EventTimestampMs"),
		EventType:         stringOr(v, models.DefaultEventType, "EventType"),
		Outcome:           stringOr(v, models.OutcomeOK, "Outcome"),
		ScriptName:        stringOr(v, "", "ScriptName"),
		DispatchNamespace: stringOr(v, "", "DispatchNamespace"),
		Entrypoint:        stringOr(v, "", "Entrypoint"),
	}

	if ev := v.Get("Event"); ev != nil && ev.Type() == fastjson.TypeObject {
		e.Event = models.TraceEvent{
			RayID: stringOr(ev, "", "RayID"),
			Request: models.EventRequest{
				URL:    stringOr(ev, "", "Request", "URL"),
				Method: stringOr(ev, "", "Request", "Method"),
			},
			Response: models.EventResponse{
				Status: ev.GetInt("Response", "Status"),
			},
		}
	}

	for _, ex := range v.GetArray("Exceptions") {
		e.Exceptions = append(e.Exceptions, models.LogException{
			Name:    stringOr(ex, "", "Name"),
			Message: stringOr(ex, "", "Message"),
		})
	}

	for _, lv := range v.GetArray("Logs") {
		msg := models.LogMessage{
			Level:       stringOr(lv, models.DefaultLogLevel, "Level"),
			TimestampMs: lv.GetInt64("TimestampMs"),
		}
		for _, frag := range lv.GetArray("Message") {
			if b, err := frag.StringBytes(); err == nil {
				msg.Message = append(msg.Message, string(b))
			}
		}
		e.Logs = append(e.Logs, msg)
	}

	for _, tag := range v.GetArray("ScriptTags") {
		if b, err := tag.StringBytes(); err == nil {
			e.ScriptTags = append(e.ScriptTags, string(b))
		}
	}

	if sv := v.Get("ScriptVersion"); sv != nil && sv.Type() == fastjson.TypeObject {
		e.ScriptVersion = &models.ScriptVersion{ID: stringOr(sv, "", "Id")}
	}
	if cpu := v.Get("CPUTimeMs"); cpu != nil && cpu.Type() == fastjson.TypeNumber {
		ms := cpu.GetInt64()
		e.CPUTimeMs = &ms
	}
	if wall := v.Get("WallTimeMs"); wall != nil && wall.Type() == fastjson.TypeNumber {
		ms := wall.GetInt64()
		e.WallTimeMs = &ms
	}

	return e
}

// stringOr returns the string at the given key path, or def when the value
// is absent or not a string.
func stringOr(v *fastjson.Value, def string, keys ...string) string {
	b := v.GetStringBytes(keys...)
	if b == nil {
		return def
	}
	return string(b)
}
