package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Resource definitions ---

var resDBInfo = mcp.NewResource(
	"garmindash://db_info",
	"Database Info",
	mcp.WithResourceDescription("Location, existence and size of the Garmin SQLite database"),
	mcp.WithMIMEType("application/json"),
)

var resUpdateLog = mcp.NewResource(
	"garmindash://update_log",
	"Update Log",
	mcp.WithResourceDescription("Combined output of every sync run, newest last"),
	mcp.WithMIMEType("text/plain"),
)

func (h *handlers) dbInfo(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.dbInfoDoc())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) updateLog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := os.ReadFile(h.paths.UpdateLogPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("No log yet")
		}
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     string(data),
		},
	}, nil
}
