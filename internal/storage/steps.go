package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// StepsRow is one day of step count against the day's goal. The goal is
// null on files synced by tool versions that did not record it.
type StepsRow struct {
	Date     string `json:"date"`
	Steps    *int64 `json:"steps"`
	StepGoal *int64 `json:"step_goal"`
}

// StepsDays returns the most recent days of step counts, newest first.
func (db *DB) StepsDays(ctx context.Context, limit int) ([]StepsRow, error) {
	limit = clampLimit(limit)

	cols, err := db.selectList(ctx, "daily_summary", []column{
		required("day"),
		required("steps"),
		optional("step_goal"),
	})
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cols+` FROM daily_summary ORDER BY day DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	defer rows.Close()

	result := []StepsRow{}
	for rows.Next() {
		var r StepsRow
		var day any
		var steps, goal sql.NullFloat64
		if err := rows.Scan(&day, &steps, &goal); err != nil {
			return nil, fmt.Errorf("scanning steps: %w", err)
		}
		r.Date = dateString(day)
		r.Steps = nullInt(steps)
		r.StepGoal = nullInt(goal)
		result = append(result, r)
	}
	return result, rows.Err()
}
