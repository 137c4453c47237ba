package database

import (
	"database/sql"
	"fmt"
)

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "analysis history",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS analyses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid TEXT UNIQUE NOT NULL,
    username TEXT NOT NULL,
    content_type TEXT NOT NULL CHECK(content_type IN ('text', 'url', 'video')),
    title TEXT,
    content_preview TEXT,
    verdict TEXT NOT NULL,
    confidence REAL NOT NULL,
    explanation TEXT,
    analysis_mode TEXT DEFAULT 'hybrid',
    detected_language TEXT DEFAULT 'unknown',
    processing_time REAL DEFAULT 0,
    risk_level TEXT,
    technical_details TEXT,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses(username, created_at);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "source urls and scan runs",
		Up: func(tx *sql.Tx) error {
			has, err := hasColumn(tx, "analyses", "url")
			if err != nil {
				return err
			}
			if !has {
				if _, err := tx.Exec("ALTER TABLE analyses ADD COLUMN url TEXT"); err != nil {
					return err
				}
			}
			_, err = tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses(url);

CREATE TABLE IF NOT EXISTS scan_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    period_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    article_count INTEGER DEFAULT 0,
    analyzed_count INTEGER DEFAULT 0,
    fake_count INTEGER DEFAULT 0,
    real_count INTEGER DEFAULT 0,
    inconclusive_count INTEGER DEFAULT 0,
    average_confidence REAL DEFAULT 0,
    finished_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_period ON scan_runs(period_id);
`)
			return err
		},
	},
}

// hasColumn reports whether table already has column, so ALTER TABLE steps
// can re-run after a crash between commit and version stamp.
func hasColumn(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
