// Package models contains domain types for the logpush query backend.
package models

import (
	"strings"
	"time"
)

// Outcome values reported by the platform for a worker invocation.
const (
	OutcomeOK        = "ok"
	OutcomeException = "exception"
)

// DefaultEventType is the event type assumed when the payload omits one.
const DefaultEventType = "fetch"

// DefaultLogLevel is the console level assumed when the payload omits one.
const DefaultLogLevel = "log"

// EventRequest holds HTTP request details from the trace event.
type EventRequest struct {
	URL    string `json:"URL"`
	Method string `json:"Method"`
}

// EventResponse holds HTTP response details from the trace event.
type EventResponse struct {
	Status int `json:"Status"`
}

// TraceEvent is the event that triggered the worker invocation.
type TraceEvent struct {
	RayID    string        `json:"RayID"`
	Request  EventRequest  `json:"Request"`
	Response EventResponse `json:"Response"`
}

// LogMessage is a console log message emitted during an invocation.
type LogMessage struct {
	Level       string   `json:"Level"`
	Message     []string `json:"Message"`
	TimestampMs int64    `json:"TimestampMs"`
}

// Text returns the message fragments joined into a single string.
func (m LogMessage) Text() string {
	return strings.Join(m.Message, " ")
}

// LogException is an uncaught exception raised during an invocation.
type LogException struct {
	Name    string `json:"Name"`
	Message string `json:"Message"`
}

// ScriptVersion holds version info for the worker script.
type ScriptVersion struct {
	ID string `json:"Id"`
}

// LogEntry is a single trace event from a logpush NDJSON file.
//
// Every field has a documented default so that entries decoded from
// partial or evolving payloads are always fully populated. Entries are
// value objects: constructed once per query, never mutated.
type LogEntry struct {
	Event             TraceEvent     `json:"Event"`
	EventTimestampMs  int64          `json:"EventTimestampMs"`
	EventType         string         `json:"EventType"`
	Outcome           string         `json:"Outcome"`
	Exceptions        []LogException `json:"Exceptions"`
	Logs              []LogMessage   `json:"Logs"`
	ScriptName        string         `json:"ScriptName"`
	ScriptTags        []string       `json:"ScriptTags"`
	ScriptVersion     *ScriptVersion `json:"ScriptVersion,omitempty"`
	CPUTimeMs         *int64         `json:"CPUTimeMs,omitempty"`
	WallTimeMs        *int64         `json:"WallTimeMs,omitempty"`
	DispatchNamespace string         `json:"DispatchNamespace,omitempty"`
	Entrypoint        string         `json:"Entrypoint,omitempty"`
}

// Timestamp returns the event timestamp as a time.Time in UTC.
func (e LogEntry) Timestamp() time.Time {
	return time.UnixMilli(e.EventTimestampMs).UTC()
}

// URL returns the request URL of the triggering event.
func (e LogEntry) URL() string {
	return e.Event.Request.URL
}

// Status returns the response status code of the triggering event.
func (e LogEntry) Status() int {
	return e.Event.Response.Status
}

// LogText returns all console messages joined with newlines.
func (e LogEntry) LogText() string {
	if len(e.Logs) == 0 {
		return ""
	}
	parts := make([]string, len(e.Logs))
	for i, l := range e.Logs {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

// HasErrors reports whether the entry failed or logged at error/warn level.
func (e LogEntry) HasErrors() bool {
	if e.Outcome == OutcomeException {
		return true
	}
	if len(e.Exceptions) > 0 {
		return true
	}
	for _, l := range e.Logs {
		if l.Level == "error" || l.Level == "warn" {
			return true
		}
	}
	return false
}
