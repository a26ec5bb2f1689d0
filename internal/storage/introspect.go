package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TableExists reports whether a table with the given name exists in the file.
func (db *DB) TableExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking for table %s: %w", name, err)
	}
	return true, nil
}

// Columns returns the column names of a table in declaration order. An
// unknown table, or any inspection failure, yields an empty slice: schema
// probing never fails a request, readers decide what a missing column means.
func (db *DB) Columns(ctx context.Context, table string) []string {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil
		}
		cols = append(cols, name)
	}
	if rows.Err() != nil {
		return nil
	}
	return cols
}

// HasColumn reports whether a table exists and carries the named column.
func (db *DB) HasColumn(ctx context.Context, table, column string) bool {
	for _, c := range db.Columns(ctx, table) {
		if c == column {
			return true
		}
	}
	return false
}

// UserTables returns every table in the file except SQLite's own internals,
// sorted by name.
func (db *DB) UserTables(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
