package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// pragmas are applied to every connection before migrating. The server and
// a running scan may write at the same time, so writers wait on the lock
// instead of failing with SQLITE_BUSY.
var pragmas = []struct {
	stmt string
	what string
}{
	{"PRAGMA journal_mode=WAL", "setting journal mode"},
	{"PRAGMA busy_timeout=5000", "setting busy timeout"},
	{"PRAGMA synchronous=NORMAL", "setting synchronous mode"},
}

// DB is the analysis history store.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the history database at dbPath and migrates it to
// the latest schema.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	conn.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := conn.Exec(p.stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", p.what, err)
		}
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// SchemaVersion returns the applied migration version.
func (db *DB) SchemaVersion() (int, error) {
	return schemaVersion(db.conn)
}
