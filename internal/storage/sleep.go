package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SleepRow is one night of sleep detail. Stage durations keep the tool's
// raw clock strings alongside derived _seconds and _hours forms; a raw
// value that is absent or malformed derives to null without failing the
// rest of the night.
type SleepRow struct {
	Date              string   `json:"date"`
	TotalSleep        *string  `json:"total_sleep"`
	TotalSleepSeconds *int64   `json:"total_sleep_seconds"`
	TotalSleepHours   *float64 `json:"total_sleep_hours"`
	DeepSleep         *string  `json:"deep_sleep"`
	DeepSleepSeconds  *int64   `json:"deep_sleep_seconds"`
	DeepSleepHours    *float64 `json:"deep_sleep_hours"`
	LightSleep        *string  `json:"light_sleep"`
	LightSleepSeconds *int64   `json:"light_sleep_seconds"`
	LightSleepHours   *float64 `json:"light_sleep_hours"`
	REMSleep          *string  `json:"rem_sleep"`
	REMSleepSeconds   *int64   `json:"rem_sleep_seconds"`
	REMSleepHours     *float64 `json:"rem_sleep_hours"`
	Awake             *string  `json:"awake"`
	AwakeSeconds      *int64   `json:"awake_seconds"`
	AwakeHours        *float64 `json:"awake_hours"`
	AvgSpo2           *float64 `json:"avg_spo2"`
	AvgRR             *float64 `json:"avg_rr"`
	AvgStress         *float64 `json:"avg_stress"`
	Score             *float64 `json:"score"`
	Qualifier         *string  `json:"qualifier"`
}

// SleepNights returns the most recent nights of sleep detail, newest first.
// Unlike the other readers this one treats its source table as mandatory: a
// file without sleep data cannot answer the question at all.
func (db *DB) SleepNights(ctx context.Context, limit int) ([]SleepRow, error) {
	limit = clampLimit(limit)

	exists, err := db.TableExists(ctx, "sleep")
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("No 'sleep' table found. Expected columns: day, total_sleep, deep_sleep, light_sleep, rem_sleep, awake")
	}

	cols, err := db.selectList(ctx, "sleep", []column{
		required("day"),
		required("total_sleep"),
		required("deep_sleep"),
		required("light_sleep"),
		required("rem_sleep"),
		required("awake"),
		optional("avg_spo2"),
		optional("avg_rr"),
		optional("avg_stress"),
		optional("score"),
		optional("qualifier"),
	})
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cols+` FROM sleep ORDER BY day DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sleep: %w", err)
	}
	defer rows.Close()

	result := []SleepRow{}
	for rows.Next() {
		var r SleepRow
		var day any
		var total, deep, light, rem, awake, qualifier sql.NullString
		var spo2, rr, stress, score sql.NullFloat64
		if err := rows.Scan(&day, &total, &deep, &light, &rem, &awake,
			&spo2, &rr, &stress, &score, &qualifier); err != nil {
			return nil, fmt.Errorf("scanning sleep: %w", err)
		}

		r.Date = dateString(day)
		r.TotalSleep = nullString(total)
		r.TotalSleepSeconds = durationSeconds(r.TotalSleep)
		r.TotalSleepHours = hoursFromSeconds(r.TotalSleepSeconds)
		r.DeepSleep = nullString(deep)
		r.DeepSleepSeconds = durationSeconds(r.DeepSleep)
		r.DeepSleepHours = hoursFromSeconds(r.DeepSleepSeconds)
		r.LightSleep = nullString(light)
		r.LightSleepSeconds = durationSeconds(r.LightSleep)
		r.LightSleepHours = hoursFromSeconds(r.LightSleepSeconds)
		r.REMSleep = nullString(rem)
		r.REMSleepSeconds = durationSeconds(r.REMSleep)
		r.REMSleepHours = hoursFromSeconds(r.REMSleepSeconds)
		r.Awake = nullString(awake)
		r.AwakeSeconds = durationSeconds(r.Awake)
		r.AwakeHours = hoursFromSeconds(r.AwakeSeconds)
		r.AvgSpo2 = nullFloat(spo2)
		r.AvgRR = nullFloat(rr)
		r.AvgStress = nullFloat(stress)
		r.Score = nullFloat(score)
		r.Qualifier = nullString(qualifier)

		result = append(result, r)
	}
	return result, rows.Err()
}
