package parser

import (
	"time"

	"github.com/logpush-viewer/backend/internal/models"
)

// EntrySummary is the compact projection of a log entry, used for search
// and listing results where payload size matters.
type EntrySummary struct {
	Timestamp      string `json:"timestamp"`
	Script         string `json:"script"`
	Method         string `json:"method"`
	URL            string `json:"url"`
	Status         int    `json:"status"`
	Outcome        string `json:"outcome"`
	RayID          string `json:"ray_id"`
	HasErrors      bool   `json:"has_errors"`
	ExceptionCount int    `json:"exception_count"`
	LogCount       int    `json:"log_count"`
}

// ExceptionDetail is one exception in a detail projection.
type ExceptionDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// LogDetail is one console message in a detail projection.
type LogDetail struct {
	Level       string `json:"level"`
	Message     string `json:"message"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// EntryDetail is the full projection of a log entry, used for single-file
// reads and error drill-downs.
type EntryDetail struct {
	Timestamp  string            `json:"timestamp"`
	Script     string            `json:"script"`
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Status     int               `json:"status"`
	Outcome    string            `json:"outcome"`
	RayID      string            `json:"ray_id"`
	CPUTimeMs  *int64            `json:"cpu_time_ms"`
	WallTimeMs *int64            `json:"wall_time_ms"`
	Exceptions []ExceptionDetail `json:"exceptions"`
	Logs       []LogDetail       `json:"logs"`
}

// FormatSummary projects an entry into its summary shape.
func FormatSummary(e models.LogEntry) EntrySummary {
	return EntrySummary{
		Timestamp:      e.Timestamp().Format(time.RFC3339),
		Script:         e.ScriptName,
		Method:         e.Event.Request.Method,
		URL:            e.URL(),
		Status:         e.Status(),
		Outcome:        e.Outcome,
		RayID:          e.Event.RayID,
		HasErrors:      e.HasErrors(),
		ExceptionCount: len(e.Exceptions),
		LogCount:       len(e.Logs),
	}
}

// FormatDetail projects an entry into its full detail shape.
func FormatDetail(e models.LogEntry) EntryDetail {
	d := EntryDetail{
		Timestamp:  e.Timestamp().Format(time.RFC3339),
		Script:     e.ScriptName,
		Method:     e.Event.Request.Method,
		URL:        e.URL(),
		Status:     e.Status(),
		Outcome:    e.Outcome,
		RayID:      e.Event.RayID,
		CPUTimeMs:  e.CPUTimeMs,
		WallTimeMs: e.WallTimeMs,
		Exceptions: make([]ExceptionDetail, 0, len(e.Exceptions)),
		Logs:       make([]LogDetail, 0, len(e.Logs)),
	}
	for _, ex := range e.Exceptions {
		d.Exceptions = append(d.Exceptions, ExceptionDetail{Name: ex.Name, Message: ex.Message})
	}
	for _, l := range e.Logs {
		d.Logs = append(d.Logs, LogDetail{
			Level:       l.Level,
			Message:     l.Text(),
			TimestampMs: l.TimestampMs,
		})
	}
	return d
}
