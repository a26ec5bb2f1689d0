// Package mcp exposes the Garmin health readers to AI assistants over the
// Model Context Protocol. Every tool is read-only; maintenance operations
// stay behind the HTTP server's single write path.
package mcp

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"garmindash/internal/paths"
	"garmindash/internal/storage"
)

// New creates an MCP server with all tools and resources registered.
func New(p paths.Paths, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("garmindash", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Garmin health data server. Query daily summaries, sleep, steps, stress and exercise minutes from the local GarminDB database. All tools are read-only."),
	)

	h := &handlers{paths: p, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetDailySummary, Handler: h.getDailySummary},
		server.ServerTool{Tool: toolGetSleep, Handler: h.getSleep},
		server.ServerTool{Tool: toolGetSteps, Handler: h.getSteps},
		server.ServerTool{Tool: toolGetStress, Handler: h.getStress},
		server.ServerTool{Tool: toolGetExercise, Handler: h.getExercise},
		server.ServerTool{Tool: toolGetDBInfo, Handler: h.getDBInfo},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resDBInfo, Handler: h.dbInfo},
		server.ServerResource{Resource: resUpdateLog, Handler: h.updateLog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	paths paths.Paths
	log   *slog.Logger
}

// openDB opens the database for a single call. The sync tool may replace
// the file between calls, so nothing is cached.
func (h *handlers) openDB() (*storage.DB, error) {
	path := h.paths.DBPath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("Database not found at %s", path)
	}
	return storage.Open(path)
}

// dbInfoDoc reports the database file the readers would open.
func (h *handlers) dbInfoDoc() map[string]any {
	info := map[string]any{
		"path":       h.paths.DBPath(),
		"exists":     false,
		"size_bytes": int64(0),
	}
	if st, err := os.Stat(h.paths.DBPath()); err == nil {
		info["exists"] = true
		info["size_bytes"] = st.Size()
	}
	return info
}
