package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// defaultLimit is the row window readers use when the caller does not ask
// for one. maxLimit keeps a single response to at most a year of days.
const (
	defaultLimit = 30
	maxLimit     = 365
)

// clampLimit bounds the requested row window.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// column describes one column a reader wants from its source table.
// Optional columns that the table does not carry are selected as NULL
// placeholders, so every schema variant produces the same output shape.
type column struct {
	name     string
	required bool
}

func required(name string) column { return column{name: name, required: true} }
func optional(name string) column { return column{name: name} }

// selectList resolves the wanted columns against the table's actual schema
// and returns the SELECT list. A missing required column is an error naming
// both what is missing and what the table actually has, so a foreign or
// half-synced schema is diagnosable from the response alone.
func (db *DB) selectList(ctx context.Context, table string, want []column) (string, error) {
	have := db.Columns(ctx, table)
	haveSet := make(map[string]bool, len(have))
	for _, name := range have {
		haveSet[name] = true
	}

	parts := make([]string, 0, len(want))
	var missing []string
	for _, c := range want {
		switch {
		case haveSet[c.name]:
			parts = append(parts, c.name)
		case c.required:
			missing = append(missing, c.name)
		default:
			parts = append(parts, "NULL AS "+c.name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("table %s is missing required columns %s (present: %s)",
			table, strings.Join(missing, ", "), strings.Join(have, ", "))
	}
	return strings.Join(parts, ", "), nil
}

// dateString normalizes a scanned day value. The tool declares day columns
// as DATE, which the driver may hand back as text or as a parsed time
// depending on how the file was written.
func dateString(v any) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case string:
		return d
	case []byte:
		return string(d)
	default:
		return fmt.Sprint(d)
	}
}

// nullInt converts a scanned nullable numeric into a whole-number pointer.
func nullInt(v sql.NullFloat64) *int64 {
	if !v.Valid {
		return nil
	}
	n := int64(v.Float64)
	return &n
}

// nullFloat converts a scanned nullable numeric into a float pointer.
func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// nullString converts a scanned nullable text value into a string pointer.
func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
