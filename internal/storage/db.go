// Package storage reads the SQLite database maintained by the garmindb sync
// tool. The schema belongs to the tool, not to us: readers inspect the
// tables and columns they need and adapt their queries to what is actually
// there. Nothing in this package ever creates or alters schema.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection to the sync tool's database file. Callers
// open one per operation and close it when done, so a freshly synced or
// erased file is always picked up.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the database file at path. The file is expected to exist;
// callers guard with a stat first so a missing database is reported as
// not-ready rather than silently created here.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite works best with a single connection; the sync tool may hold
	// the file at the same time, so wait out short lock contention.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path the connection was opened with.
func (db *DB) Path() string {
	return db.path
}
