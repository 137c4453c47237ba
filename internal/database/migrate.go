package database

import (
	"database/sql"
	"fmt"
	"log"
)

// schemaVersion reads PRAGMA user_version.
func schemaVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// hasAnalysesTable reports whether an analyses table already exists. History
// files written before versioning have the table but user_version 0.
func hasAnalysesTable(conn *sql.DB) (bool, error) {
	var count int
	err := conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='analyses'",
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for analyses table: %w", err)
	}
	return count > 0, nil
}

// migrate applies every migration newer than the stored user_version.
func migrate(conn *sql.DB) error {
	current, err := schemaVersion(conn)
	if err != nil {
		return err
	}

	if current == 0 {
		unversioned, err := hasAnalysesTable(conn)
		if err != nil {
			return err
		}
		if unversioned {
			log.Printf("found unversioned history database, stamping as version 1")
			if err := setVersion(conn, 1); err != nil {
				return err
			}
			current = 1
		}
	}

	if current >= latestVersion() {
		return nil
	}
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := apply(conn, m); err != nil {
			return err
		}
	}
	return nil
}

func apply(conn *sql.DB, m Migration) error {
	log.Printf("applying migration %d: %s", m.Version, m.Description)

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	if err := m.Up(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.Version, err)
	}

	// modernc/sqlite does not apply user_version inside a transaction; the
	// migrations are idempotent so a crash here just re-runs m.
	return setVersion(conn, m.Version)
}

func setVersion(conn *sql.DB, v int) error {
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return fmt.Errorf("setting version %d: %w", v, err)
	}
	return nil
}
