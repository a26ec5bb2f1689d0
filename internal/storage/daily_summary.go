package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// DailySummaryRow is one day of the combined steps, heart rate and sleep
// overview. Field names follow the dashboard's wire format.
type DailySummaryRow struct {
	Date             string   `json:"date"`
	Steps            *int64   `json:"steps"`
	RestingHeartRate *float64 `json:"restingHeartRate"`
	SleepSeconds     *int64   `json:"sleepSeconds"`
}

// DailySummaries returns the most recent days of the overview, newest first.
// Sleep joins in from sleep_summary when that table carries sleep_seconds;
// files synced without sleep data get null for every row instead.
func (db *DB) DailySummaries(ctx context.Context, limit int) ([]DailySummaryRow, error) {
	limit = clampLimit(limit)

	if _, err := db.selectList(ctx, "daily_summary",
		[]column{required("day"), required("steps"), required("rhr")}); err != nil {
		return nil, err
	}

	query := `SELECT day, steps, rhr, NULL AS sleep_seconds
	          FROM daily_summary
	          ORDER BY day DESC
	          LIMIT ?`
	if db.HasColumn(ctx, "sleep_summary", "sleep_seconds") {
		query = `SELECT ds.day, ds.steps, ds.rhr, ss.sleep_seconds
		         FROM daily_summary ds
		         LEFT JOIN sleep_summary ss ON ss.day = ds.day
		         ORDER BY ds.day DESC
		         LIMIT ?`
	}

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying daily summary: %w", err)
	}
	defer rows.Close()

	result := []DailySummaryRow{}
	for rows.Next() {
		var r DailySummaryRow
		var day any
		var steps, rhr, sleep sql.NullFloat64
		if err := rows.Scan(&day, &steps, &rhr, &sleep); err != nil {
			return nil, fmt.Errorf("scanning daily summary: %w", err)
		}
		r.Date = dateString(day)
		r.Steps = nullInt(steps)
		r.RestingHeartRate = nullFloat(rhr)
		r.SleepSeconds = nullInt(sleep)
		result = append(result, r)
	}
	return result, rows.Err()
}
