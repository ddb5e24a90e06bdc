package parser

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/logpush-viewer/backend/internal/models"
)

// StatusCounts maps a status code's display form to a count. It marshals
// with keys in ascending numeric order, which plain Go maps cannot promise.
type StatusCounts map[string]int

// MarshalJSON emits the counts ordered by ascending numeric status.
func (s StatusCounts) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(s[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Stats is an aggregate rollup over a sequence of log entries.
type Stats struct {
	TotalRequests int            `json:"total_requests"`
	ByWorker      map[string]int `json:"by_worker"`
	ByStatus      StatusCounts   `json:"by_status"`
	ByOutcome     map[string]int `json:"by_outcome"`
	ErrorCount    int            `json:"error_count"`
	ErrorRate     float64        `json:"error_rate"` // percentage, two decimals
}

// ComputeStats reduces entries into grouped counts and an error rate.
// An empty input yields zero counts, empty maps, and an error rate of
// exactly 0.0 rather than a division fault.
func ComputeStats(entries []models.LogEntry) Stats {
	stats := Stats{
		ByWorker:  make(map[string]int),
		ByStatus:  make(StatusCounts),
		ByOutcome: make(map[string]int),
	}
	if len(entries) == 0 {
		return stats
	}

	for _, e := range entries {
		stats.ByWorker[e.ScriptName]++
		stats.ByStatus[strconv.Itoa(e.Status())]++
		stats.ByOutcome[e.Outcome]++
		if e.HasErrors() {
			stats.ErrorCount++
		}
	}

	stats.TotalRequests = len(entries)
	rate := float64(stats.ErrorCount) / float64(stats.TotalRequests) * 100
	stats.ErrorRate = math.Round(rate*100) / 100
	return stats
}
