// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", h.HandleHealth)

	// Bucket browsing
	apiGroup.GET("/environments", h.HandleListEnvironments)
	apiGroup.GET("/dates", h.HandleListDates)
	apiGroup.GET("/files", h.HandleListFiles)
	apiGroup.GET("/files/content", h.HandleReadFile)

	// Queries
	apiGroup.GET("/search", h.HandleSearchLogs)
	apiGroup.GET("/search/msgpack", h.HandleSearchLogsMsgpack)
	apiGroup.GET("/stats", h.HandleLogStats)
	apiGroup.GET("/errors", h.HandleGetErrors)
	apiGroup.GET("/latest", h.HandleGetLatest)
}
