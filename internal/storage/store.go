package storage

import (
	"context"

	"github.com/logpush-viewer/backend/internal/models"
)

// Store defines read-only access to the logpush bucket. Implementations
// own listing, retrieval, decompression, and transient-failure retries;
// callers receive decoded text and metadata.
type Store interface {
	// ListEnvironments returns the top-level environment prefixes.
	ListEnvironments(ctx context.Context) ([]string, error)

	// ListDates returns date folders sorted by date descending. An empty
	// environment lists dates across all environments.
	ListDates(ctx context.Context, environment string, limit int) ([]models.DateFolder, error)

	// ListFiles returns log files for one date sorted by last-modified
	// descending, plus a continuation token for the next page ("" if none).
	ListFiles(ctx context.Context, date, environment string, limit int, cursor string) ([]models.LogFile, string, error)

	// GetFileContent returns the decoded text content of one object.
	GetFileContent(ctx context.Context, key string) (string, error)

	// GetLatestFiles returns up to count files from the most recent date.
	GetLatestFiles(ctx context.Context, environment string, count int) ([]models.LogFile, error)
}
