package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetDailySummary = mcp.NewTool("get_daily_summary",
	mcp.WithDescription("Daily step counts, resting heart rate and sleep seconds, newest day first."),
	mcp.WithNumber("days", mcp.Description("How many days back to return (1-365). Defaults to 30.")),
)

var toolGetSleep = mcp.NewTool("get_sleep",
	mcp.WithDescription("Nightly sleep stages (total/deep/light/REM/awake) with derived seconds and hours, plus SpO2, respiration, stress and score where recorded."),
	mcp.WithNumber("days", mcp.Description("How many nights back to return (1-365). Defaults to 30.")),
)

var toolGetSteps = mcp.NewTool("get_steps",
	mcp.WithDescription("Daily step counts with the step goal where recorded."),
	mcp.WithNumber("days", mcp.Description("How many days back to return (1-365). Defaults to 30.")),
)

var toolGetStress = mcp.NewTool("get_stress",
	mcp.WithDescription("Daily average stress level. Days without a stress reading are omitted."),
	mcp.WithNumber("days", mcp.Description("How many days back to return (1-365). Defaults to 30.")),
)

var toolGetExercise = mcp.NewTool("get_exercise",
	mcp.WithDescription("Daily moderate/vigorous activity minutes with derived seconds and totals, plus distance and calories where recorded."),
	mcp.WithNumber("days", mcp.Description("How many days back to return (1-365). Defaults to 30.")),
)

var toolGetDBInfo = mcp.NewTool("get_db_info",
	mcp.WithDescription("Location, existence and size of the Garmin SQLite database file."),
)

// --- Tool handlers ---

func (h *handlers) getDailySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	db, err := h.openDB()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer db.Close()

	rows, err := db.DailySummaries(ctx, req.GetInt("days", 0))
	if err != nil {
		h.log.Error("mcp get_daily_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSleep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	db, err := h.openDB()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer db.Close()

	rows, err := db.SleepNights(ctx, req.GetInt("days", 0))
	if err != nil {
		h.log.Error("mcp get_sleep", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSteps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	db, err := h.openDB()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer db.Close()

	rows, err := db.StepsDays(ctx, req.GetInt("days", 0))
	if err != nil {
		h.log.Error("mcp get_steps", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	db, err := h.openDB()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer db.Close()

	rows, err := db.StressDays(ctx, req.GetInt("days", 0))
	if err != nil {
		h.log.Error("mcp get_stress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	db, err := h.openDB()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer db.Close()

	rows, err := db.ExerciseDays(ctx, req.GetInt("days", 0))
	if err != nil {
		h.log.Error("mcp get_exercise", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDBInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(h.dbInfoDoc())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
