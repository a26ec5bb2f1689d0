package storage

import (
	"context"
	"slices"
	"testing"
)

// TestClearAllTables verifies every user table is emptied while the schema
// survives for the next sync to refill.
func TestClearAllTables(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE daily_summary (day DATE PRIMARY KEY, steps INTEGER)`,
		`CREATE TABLE sleep (day DATE PRIMARY KEY, total_sleep TEXT)`,
		`INSERT INTO daily_summary VALUES ('2024-03-01', 100), ('2024-03-02', 200)`,
		`INSERT INTO sleep VALUES ('2024-03-01', '7:00:00')`,
	)

	ctx := context.Background()
	cleared, err := db.ClearAllTables(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"daily_summary", "sleep"}; !slices.Equal(cleared, want) {
		t.Errorf("cleared = %v, want %v", cleared, want)
	}

	for _, table := range cleared {
		exists, err := db.TableExists(ctx, table)
		if err != nil || !exists {
			t.Errorf("table %s should survive the erase", table)
		}
	}

	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_summary`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("daily_summary still has %d rows", count)
	}
}

// TestClearAllTablesEmptyFile verifies a schemaless file clears nothing and
// reports an empty manifest rather than an error.
func TestClearAllTablesEmptyFile(t *testing.T) {
	db := openTestDB(t)

	cleared, err := db.ClearAllTables(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared == nil || len(cleared) != 0 {
		t.Errorf("cleared = %v, want empty slice", cleared)
	}
}
