package storage

import (
	"context"
	"fmt"
)

// StressRow is one day's average stress level. Days the device recorded no
// stress at all are filtered out rather than reported as null.
type StressRow struct {
	Date      string  `json:"date"`
	StressAvg float64 `json:"stress_avg"`
}

// StressDays returns the most recent days with a recorded stress average,
// newest first.
func (db *DB) StressDays(ctx context.Context, limit int) ([]StressRow, error) {
	limit = clampLimit(limit)

	if _, err := db.selectList(ctx, "daily_summary",
		[]column{required("day"), required("stress_avg")}); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT day, stress_avg FROM daily_summary
		 WHERE stress_avg IS NOT NULL
		 ORDER BY day DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying stress: %w", err)
	}
	defer rows.Close()

	result := []StressRow{}
	for rows.Next() {
		var r StressRow
		var day any
		if err := rows.Scan(&day, &r.StressAvg); err != nil {
			return nil, fmt.Errorf("scanning stress: %w", err)
		}
		r.Date = dateString(day)
		result = append(result, r)
	}
	return result, rows.Err()
}
