package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ExerciseRow is one day of activity intensity. The three intensity
// durations keep the tool's raw clock strings alongside derived seconds;
// total_activity_seconds sums moderate and vigorous with nulls as zero, so
// it is always a number.
type ExerciseRow struct {
	Date                     string   `json:"date"`
	ModerateActivityTime     *string  `json:"moderate_activity_time"`
	VigorousActivityTime     *string  `json:"vigorous_activity_time"`
	IntensityTimeGoal        *string  `json:"intensity_time_goal"`
	ModerateActivitySeconds  *int64   `json:"moderate_activity_seconds"`
	VigorousActivitySeconds  *int64   `json:"vigorous_activity_seconds"`
	IntensityTimeGoalSeconds *int64   `json:"intensity_time_goal_seconds"`
	TotalActivitySeconds     int64    `json:"total_activity_seconds"`
	Distance                 *float64 `json:"distance"`
	CaloriesActive           *float64 `json:"calories_active"`
	CaloriesTotal            *float64 `json:"calories_total"`
}

// ExerciseDays returns the most recent days of activity intensity, newest
// first.
func (db *DB) ExerciseDays(ctx context.Context, limit int) ([]ExerciseRow, error) {
	limit = clampLimit(limit)

	cols, err := db.selectList(ctx, "daily_summary", []column{
		required("day"),
		required("moderate_activity_time"),
		required("vigorous_activity_time"),
		required("intensity_time_goal"),
		optional("distance"),
		optional("calories_active"),
		optional("calories_total"),
	})
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cols+` FROM daily_summary ORDER BY day DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	defer rows.Close()

	result := []ExerciseRow{}
	for rows.Next() {
		var r ExerciseRow
		var day any
		var moderate, vigorous, goal sql.NullString
		var distance, calActive, calTotal sql.NullFloat64
		if err := rows.Scan(&day, &moderate, &vigorous, &goal,
			&distance, &calActive, &calTotal); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}

		r.Date = dateString(day)
		r.ModerateActivityTime = nullString(moderate)
		r.VigorousActivityTime = nullString(vigorous)
		r.IntensityTimeGoal = nullString(goal)
		r.ModerateActivitySeconds = durationSeconds(r.ModerateActivityTime)
		r.VigorousActivitySeconds = durationSeconds(r.VigorousActivityTime)
		r.IntensityTimeGoalSeconds = durationSeconds(r.IntensityTimeGoal)
		r.TotalActivitySeconds = secondsOrZero(r.ModerateActivitySeconds) + secondsOrZero(r.VigorousActivitySeconds)
		r.Distance = nullFloat(distance)
		r.CaloriesActive = nullFloat(calActive)
		r.CaloriesTotal = nullFloat(calTotal)

		result = append(result, r)
	}
	return result, rows.Err()
}
