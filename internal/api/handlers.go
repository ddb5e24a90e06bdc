package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/logpush-viewer/backend/internal/config"
	"github.com/logpush-viewer/backend/internal/models"
	"github.com/logpush-viewer/backend/internal/parser"
	"github.com/logpush-viewer/backend/internal/storage"
)

// Handler handles API requests. Each handler marshals query parameters
// into calls against the parser core and serializes the result; all
// query state is per-request.
type Handler struct {
	store storage.Store
	query config.QueryConfig
	log   *logrus.Logger
}

// NewHandler creates a new API handler.
func NewHandler(store storage.Store, query config.QueryConfig, log *logrus.Logger) *Handler {
	return &Handler{
		store: store,
		query: query,
		log:   log,
	}
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HandleListEnvironments returns the top-level environment folders.
func (h *Handler) HandleListEnvironments(c echo.Context) error {
	envs, err := h.store.ListEnvironments(c.Request().Context())
	if err != nil {
		return h.storageError(c, err)
	}
	if envs == nil {
		envs = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"environments": envs,
		"count":        len(envs),
	})
}

// HandleListDates returns available date folders, newest first.
func (h *Handler) HandleListDates(c echo.Context) error {
	environment := c.QueryParam("environment")
	limit := intParam(c, "limit", 30)

	dates, err := h.store.ListDates(c.Request().Context(), environment, limit)
	if err != nil {
		return h.storageError(c, err)
	}
	if dates == nil {
		dates = []models.DateFolder{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"dates": dates,
		"count": len(dates),
	})
}

// HandleListFiles returns log files for a specific date, most recent first.
func (h *Handler) HandleListFiles(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date is required (YYYYMMDD)"})
	}
	environment := envParam(c)
	limit := intParam(c, "limit", 50)
	cursor := c.QueryParam("cursor")

	files, nextCursor, err := h.store.ListFiles(c.Request().Context(), date, environment, limit, cursor)
	if err != nil {
		return h.storageError(c, err)
	}
	if files == nil {
		files = []models.LogFile{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"files":       files,
		"count":       len(files),
		"next_cursor": nextCursor,
	})
}

// HandleReadFile reads and decodes one log file, returning detail
// projections up to the requested limit.
func (h *Handler) HandleReadFile(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "key is required"})
	}
	limit := intParam(c, "limit", 100)

	content, err := h.store.GetFileContent(c.Request().Context(), key)
	if err != nil {
		return h.storageError(c, err)
	}

	entries := parser.DecodeNDJSON(content)
	details := make([]parser.EntryDetail, 0, len(entries))
	for _, e := range limitEntries(entries, limit) {
		details = append(details, parser.FormatDetail(e))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries":   details,
		"count":     len(entries),
		"truncated": len(entries) > limit,
	})
}

// HandleSearchLogs searches one date's logs with filters, returning
// summary projections sorted by event timestamp descending.
func (h *Handler) HandleSearchLogs(c echo.Context) error {
	payload, ok := h.searchPayload(c)
	if !ok {
		return nil // error response already written
	}
	return c.JSON(http.StatusOK, payload)
}

// HandleSearchLogsMsgpack is HandleSearchLogs with a MessagePack response
// body, for callers paging through large result sets.
func (h *Handler) HandleSearchLogsMsgpack(c echo.Context) error {
	payload, ok := h.searchPayload(c)
	if !ok {
		return nil
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to encode msgpack"})
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// searchPayload builds the search response shared by both encodings.
// When ok is false an error response has already been written.
func (h *Handler) searchPayload(c echo.Context) (map[string]interface{}, bool) {
	date := c.QueryParam("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, map[string]string{"error": "date is required (YYYYMMDD)"})
		return nil, false
	}
	environment := envParam(c)
	limit := intParam(c, "limit", h.query.DefaultLimit)

	criteria, err := criteriaFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}

	files, _, err := h.store.ListFiles(c.Request().Context(), date, environment, h.query.MaxFilesPerQuery, "")
	if err != nil {
		h.storageError(c, err)
		return nil, false
	}

	entries, err := h.fetchEntries(c.Request().Context(), files)
	if err != nil {
		h.storageError(c, err)
		return nil, false
	}

	filtered := parser.Filter(entries, criteria)
	sortByTimestampDesc(filtered)

	summaries := make([]parser.EntrySummary, 0, len(filtered))
	for _, e := range limitEntries(filtered, limit) {
		summaries = append(summaries, parser.FormatSummary(e))
	}

	return map[string]interface{}{
		"entries":       summaries,
		"count":         len(filtered),
		"truncated":     len(filtered) > limit,
		"files_scanned": len(files),
	}, true
}

// HandleLogStats returns the aggregate rollup for one date.
func (h *Handler) HandleLogStats(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date is required (YYYYMMDD)"})
	}
	environment := envParam(c)

	files, _, err := h.store.ListFiles(c.Request().Context(), date, environment, h.query.StatsFileLimit, "")
	if err != nil {
		return h.storageError(c, err)
	}

	entries, err := h.fetchEntries(c.Request().Context(), files)
	if err != nil {
		return h.storageError(c, err)
	}

	stats := parser.ComputeStats(entries)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_requests": stats.TotalRequests,
		"by_worker":      stats.ByWorker,
		"by_status":      stats.ByStatus,
		"by_outcome":     stats.ByOutcome,
		"error_count":    stats.ErrorCount,
		"error_rate":     stats.ErrorRate,
		"date":           date,
		"environment":    environment,
		"files_scanned":  len(files),
	})
}

// HandleGetErrors returns error entries (failed outcome, exceptions, or
// error/warn logs) for one date as detail projections.
func (h *Handler) HandleGetErrors(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date is required (YYYYMMDD)"})
	}
	environment := envParam(c)
	limit := intParam(c, "limit", h.query.DefaultLimit)

	files, _, err := h.store.ListFiles(c.Request().Context(), date, environment, h.query.MaxFilesPerQuery, "")
	if err != nil {
		return h.storageError(c, err)
	}

	entries, err := h.fetchEntries(c.Request().Context(), files)
	if err != nil {
		return h.storageError(c, err)
	}

	filtered := parser.Filter(entries, parser.Criteria{
		ScriptName: c.QueryParam("script"),
		ErrorsOnly: true,
	})
	sortByTimestampDesc(filtered)

	details := make([]parser.EntryDetail, 0, len(filtered))
	for _, e := range limitEntries(filtered, limit) {
		details = append(details, parser.FormatDetail(e))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries":   details,
		"count":     len(filtered),
		"truncated": len(filtered) > limit,
	})
}

// HandleGetLatest returns the most recent entries from the newest files.
func (h *Handler) HandleGetLatest(c echo.Context) error {
	environment := envParam(c)
	limit := intParam(c, "limit", h.query.DefaultLimit)

	files, err := h.store.GetLatestFiles(c.Request().Context(), environment, h.query.LatestFileCount)
	if err != nil {
		return h.storageError(c, err)
	}
	if len(files) == 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"entries": []parser.EntrySummary{},
			"count":   0,
			"message": "no log files found",
		})
	}

	entries, err := h.fetchEntries(c.Request().Context(), files)
	if err != nil {
		return h.storageError(c, err)
	}

	if script := c.QueryParam("script"); script != "" {
		entries = parser.Filter(entries, parser.Criteria{ScriptName: script})
	}
	sortByTimestampDesc(entries)

	summaries := make([]parser.EntrySummary, 0, len(entries))
	for _, e := range limitEntries(entries, limit) {
		summaries = append(summaries, parser.FormatSummary(e))
	}

	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = f.Key
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries":    summaries,
		"count":      len(entries),
		"truncated":  len(entries) > limit,
		"files_read": keys,
	})
}

// fetchEntries downloads and decodes the given files with bounded
// concurrency, preserving file order in the combined sequence.
func (h *Handler) fetchEntries(ctx context.Context, files []models.LogFile) ([]models.LogEntry, error) {
	slots := make([][]models.LogEntry, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.query.FetchConcurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			content, err := h.store.GetFileContent(gctx, f.Key)
			if err != nil {
				return err
			}
			slots[i] = parser.DecodeNDJSON(content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entries []models.LogEntry
	for _, s := range slots {
		entries = append(entries, s...)
	}
	return entries, nil
}

// storageError surfaces a collaborator failure unmodified as a 502.
func (h *Handler) storageError(c echo.Context, err error) error {
	h.log.WithError(err).Error("storage request failed")
	return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
}

// criteriaFromQuery extracts filter criteria from query parameters.
func criteriaFromQuery(c echo.Context) (parser.Criteria, error) {
	criteria := parser.Criteria{
		ScriptName: c.QueryParam("script"),
		Outcome:    c.QueryParam("outcome"),
		SearchText: c.QueryParam("q"),
	}

	var err error
	if criteria.StatusCode, err = optionalIntParam(c, "status"); err != nil {
		return criteria, err
	}
	if criteria.StatusGTE, err = optionalIntParam(c, "status_gte"); err != nil {
		return criteria, err
	}
	if criteria.StatusLT, err = optionalIntParam(c, "status_lt"); err != nil {
		return criteria, err
	}
	return criteria, nil
}

func sortByTimestampDesc(entries []models.LogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EventTimestampMs > entries[j].EventTimestampMs
	})
}

func limitEntries(entries []models.LogEntry, limit int) []models.LogEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// envParam returns the environment query parameter, defaulting to production.
func envParam(c echo.Context) string {
	if env := c.QueryParam("environment"); env != "" {
		return env
	}
	return "production"
}

func intParam(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func optionalIntParam(c echo.Context, name string) (*int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
