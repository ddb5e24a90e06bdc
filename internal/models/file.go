package models

import (
	"strings"
	"time"
)

// LogFile is metadata about one stored log object.
type LogFile struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	StartTime    string    `json:"start_time,omitempty"`
	EndTime      string    `json:"end_time,omitempty"`
}

// LogFileFromKey builds a LogFile from an object key, extracting the time
// range from the filename convention {start}_{end}_{hash}.log.gz. Filenames
// with fewer than two underscore segments leave StartTime/EndTime empty.
func LogFileFromKey(key string, size int64, lastModified time.Time) LogFile {
	f := LogFile{
		Key:          key,
		Size:         size,
		LastModified: lastModified,
	}

	filename := key
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		filename = key[idx+1:]
	}
	filename = strings.TrimSuffix(filename, ".log.gz")

	parts := strings.Split(filename, "_")
	if len(parts) >= 2 {
		f.StartTime = parts[0]
		f.EndTime = parts[1]
	}
	return f
}

// DateFolder is a date-level grouping of log files within an environment.
type DateFolder struct {
	Date        string `json:"date"` // YYYYMMDD
	Environment string `json:"environment"`
	Prefix      string `json:"prefix"`
	FileCount   *int   `json:"file_count,omitempty"`
}
