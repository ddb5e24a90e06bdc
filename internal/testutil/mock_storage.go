// mock_storage.go - In-memory bucket store for testing
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/logpush-viewer/backend/internal/models"
	"github.com/logpush-viewer/backend/internal/storage"
)

// ErrObjectNotFound is returned when a requested key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// MockStore implements storage.Store over in-memory objects keyed like the
// real bucket: {environment}/{date}/{filename}.
type MockStore struct {
	mu      sync.RWMutex
	objects map[string]mockObject

	// FailWith, when set, is returned by every method. Used to exercise
	// collaborator-error paths in handlers.
	FailWith error
}

type mockObject struct {
	content      string
	lastModified time.Time
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{objects: make(map[string]mockObject)}
}

// AddObject registers an object with the given decoded content.
func (m *MockStore) AddObject(key, content string, lastModified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = mockObject{content: content, lastModified: lastModified}
}

func (m *MockStore) ListEnvironments(ctx context.Context) ([]string, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var envs []string
	for key := range m.objects {
		env := strings.SplitN(key, "/", 2)[0]
		if !seen[env] {
			seen[env] = true
			envs = append(envs, env)
		}
	}
	sort.Strings(envs)
	return envs, nil
}

func (m *MockStore) ListDates(ctx context.Context, environment string, limit int) ([]models.DateFolder, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var dates []models.DateFolder
	for key := range m.objects {
		parts := strings.Split(key, "/")
		if len(parts) < 3 {
			continue
		}
		env, date := parts[0], parts[1]
		if environment != "" && env != environment {
			continue
		}
		id := env + "/" + date
		if seen[id] {
			continue
		}
		seen[id] = true
		dates = append(dates, models.DateFolder{
			Date:        date,
			Environment: env,
			Prefix:      id + "/",
		})
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Date > dates[j].Date })
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

func (m *MockStore) ListFiles(ctx context.Context, date, environment string, limit int, cursor string) ([]models.LogFile, string, error) {
	if m.FailWith != nil {
		return nil, "", m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := environment + "/" + date + "/"
	var files []models.LogFile
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			files = append(files, models.LogFileFromKey(key, int64(len(obj.content)), obj.lastModified))
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].LastModified.After(files[j].LastModified)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, "", nil
}

func (m *MockStore) GetFileContent(ctx context.Context, key string) (string, error) {
	if m.FailWith != nil {
		return "", m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return "", ErrObjectNotFound
	}
	return obj.content, nil
}

func (m *MockStore) GetLatestFiles(ctx context.Context, environment string, count int) ([]models.LogFile, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	dates, err := m.ListDates(ctx, environment, 1)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}
	files, _, err := m.ListFiles(ctx, dates[0].Date, environment, count, "")
	return files, err
}

// Ensure MockStore implements storage.Store
var _ storage.Store = (*MockStore)(nil)
