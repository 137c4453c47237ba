package database

import (
	"database/sql"
	"errors"
)

// InsertScanRun records a finished feed scan.
func (db *DB) InsertScanRun(r *ScanRun) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO scan_runs (period_id, mode, article_count, analyzed_count, fake_count,
			real_count, inconclusive_count, average_confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PeriodID, r.Mode, r.ArticleCount, r.AnalyzedCount, r.FakeCount,
		r.RealCount, r.InconclusiveCount, r.AverageConfidence,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetScanRuns returns recorded scans, newest first.
func (db *DB) GetScanRuns(limit int) ([]ScanRun, error) {
	rows, err := db.conn.Query(
		`SELECT id, period_id, mode, article_count, analyzed_count, fake_count, real_count,
			inconclusive_count, average_confidence, finished_at
		FROM scan_runs ORDER BY period_id DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var r ScanRun
		if err := rows.Scan(&r.ID, &r.PeriodID, &r.Mode, &r.ArticleCount, &r.AnalyzedCount,
			&r.FakeCount, &r.RealCount, &r.InconclusiveCount, &r.AverageConfidence, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetLastScanDate returns the end date of the most recent scan, or "" when
// nothing was scanned yet.
func (db *DB) GetLastScanDate() (string, error) {
	var periodID string
	err := db.conn.QueryRow(
		"SELECT period_id FROM scan_runs ORDER BY period_id DESC LIMIT 1",
	).Scan(&periodID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return PeriodEndDate(periodID), nil
}
