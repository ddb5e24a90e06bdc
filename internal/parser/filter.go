package parser

import (
	"strings"

	"github.com/logpush-viewer/backend/internal/models"
)

// Criteria is a set of independently optional filter conditions. A zero
// (or nil-pointer) field imposes no constraint; supplied fields combine
// as a logical AND.
type Criteria struct {
	ScriptName string // exact match on script name
	StatusCode *int   // exact match on response status
	StatusGTE  *int   // response status >= value
	StatusLT   *int   // response status < value
	Outcome    string // exact match on outcome tag
	SearchText string // case-insensitive substring of URL or log text
	ErrorsOnly bool   // keep only entries with HasErrors
}

// Filter returns the subsequence of entries satisfying every supplied
// criterion. The input slice is never mutated or reordered; each criterion
// only narrows the result, so evaluation order does not matter.
func Filter(entries []models.LogEntry, c Criteria) []models.LogEntry {
	filtered := entries

	if c.ScriptName != "" {
		filtered = keep(filtered, func(e models.LogEntry) bool {
			return e.ScriptName == c.ScriptName
		})
	}
	if c.StatusCode != nil {
		filtered = keep(filtered, func(e models.LogEntry) bool {
			return e.Status() == *c.StatusCode
		})
	}
	if c.StatusGTE != nil {
		filtered = keep(filtered, func(e models.LogEntry) bool {
			return e.Status() >= *c.StatusGTE
		})
	}
	if c.StatusLT != nil {
		filtered = keep(filtered, func(e models.LogEntry) bool {
			return e.Status() < *c.StatusLT
		})
	}
	if c.Outcome != "" {
		filtered = keep(filtered, func(e models.LogEntry) bool {
			return e.Outcome == c.Outcome
		})
	}
	if c.SearchText != "" {
		needle := strings.ToLower(c.SearchText)
		filtered = keep(filtered, func(e models.LogEntry) bool {
			return strings.Contains(strings.ToLower(e.URL()), needle) ||
				strings.Contains(strings.ToLower(e.LogText()), needle)
		})
	}
	if c.ErrorsOnly {
		filtered = keep(filtered, models.LogEntry.HasErrors)
	}

	return filtered
}

func keep(entries []models.LogEntry, pred func(models.LogEntry) bool) []models.LogEntry {
	out := make([]models.LogEntry, 0, len(entries))
	for _, e := range entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}
