package storage

import (
	"context"
	"fmt"
)

// ClearAllTables deletes every row from every user table in a single
// transaction and returns the names of the tables it cleared. The schema
// stays intact for the sync tool to refill. Tables are enumerated at call
// time, so whatever schema generation the tool wrote gets cleared.
func (db *DB) ClearAllTables(ctx context.Context) ([]string, error) {
	tables, err := db.UserTables(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning erase transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range tables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %q", name)); err != nil {
			return nil, fmt.Errorf("clearing table %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing erase: %w", err)
	}
	return tables, nil
}
