package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// PreviewLength is the number of characters kept as content preview.
const PreviewLength = 500

const analysisColumns = `id, uid, username, content_type, title, url, content_preview, verdict,
	confidence, explanation, analysis_mode, detected_language, processing_time, risk_level,
	technical_details, created_at`

// InsertAnalysis stores an analysis and returns its row ID. CreatedAt
// defaults to now when empty.
func (db *DB) InsertAnalysis(a *Analysis) (int64, error) {
	var details *string
	if len(a.TechnicalDetails) > 0 {
		s := string(a.TechnicalDetails)
		details = &s
	}
	result, err := db.conn.Exec(
		`INSERT INTO analyses (uid, username, content_type, title, url, content_preview, verdict,
			confidence, explanation, analysis_mode, detected_language, processing_time, risk_level,
			technical_details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(NULLIF(?, ''), datetime('now')))`,
		a.UID, a.Username, a.ContentType, a.Title, a.URL, a.ContentPreview, a.Verdict,
		a.Confidence, a.Explanation, a.Mode, a.Language, a.ProcessingTime, a.RiskLevel,
		details, a.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting analysis: %w", err)
	}
	return result.LastInsertId()
}

// GetAnalysis returns a single analysis by UID, or nil if none exists.
func (db *DB) GetAnalysis(uid string) (*Analysis, error) {
	row := db.conn.QueryRow(`SELECT `+analysisColumns+` FROM analyses WHERE uid = ?`, uid)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetUserHistory returns a user's analyses, newest first. limit <= 0 returns
// all of them.
func (db *DB) GetUserHistory(username string, limit int) ([]Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE username = ?
		ORDER BY created_at DESC, id DESC`
	args := []any{username}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnalyses(rows)
}

// GetRecentAnalyses returns the newest analyses across all users.
func (db *DB) GetRecentAnalyses(limit int) ([]Analysis, error) {
	rows, err := db.conn.Query(
		`SELECT `+analysisColumns+` FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnalyses(rows)
}

// HasAnalysisForURL reports whether an article URL was already analyzed.
func (db *DB) HasAnalysisForURL(url string) (bool, error) {
	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM analyses WHERE url = ?", url).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserStats aggregates a user's history. A user without analyses gets
// zero counts and empty distributions.
func (db *DB) GetUserStats(username string) (*UserStats, error) {
	s := &UserStats{
		LanguageDistribution: map[string]int{},
		ModeDistribution:     map[string]int{},
		AnalysisTypes:        map[string]int{ContentText: 0, ContentVideo: 0, ContentURL: 0},
	}

	err := db.conn.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN verdict IN ('fake', 'deepfake') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN verdict IN ('real', 'authentic') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN verdict = 'inconclusive' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(confidence), 0),
			COALESCE(SUM(CASE WHEN created_at >= datetime('now', '-7 days') THEN 1 ELSE 0 END), 0)
		FROM analyses WHERE username = ?`, username,
	).Scan(&s.Total, &s.Fake, &s.Real, &s.Inconclusive, &s.AverageConfidence, &s.RecentAnalyses)
	if err != nil {
		return nil, fmt.Errorf("counting analyses: %w", err)
	}
	if s.Total > 0 {
		s.FakePercentage = float64(s.Fake) / float64(s.Total) * 100
	}

	groups := []struct {
		column string
		into   map[string]int
	}{
		{"detected_language", s.LanguageDistribution},
		{"analysis_mode", s.ModeDistribution},
		{"content_type", s.AnalysisTypes},
	}
	for _, g := range groups {
		if err := db.countBy(g.column, username, g.into); err != nil {
			return nil, err
		}
	}

	s.RecentPredictions, err = db.GetUserHistory(username, 10)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) countBy(column, username string, into map[string]int) error {
	rows, err := db.conn.Query(
		fmt.Sprintf(`SELECT COALESCE(%s, 'unknown'), COUNT(*) FROM analyses WHERE username = ? GROUP BY 1`, column),
		username,
	)
	if err != nil {
		return fmt.Errorf("grouping by %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	err := db.conn.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN verdict IN ('fake', 'deepfake') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN verdict IN ('real', 'authentic') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN verdict = 'inconclusive' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= datetime('now', '-7 days') THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT username),
			COUNT(DISTINCT CASE WHEN created_at >= datetime('now', '-7 days') THEN username END)
		FROM analyses`,
	).Scan(&s.TotalAnalyses, &s.FakeCount, &s.RealCount, &s.InconclusiveCount,
		&s.RecentAnalyses, &s.Users, &s.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	if s.Users > 0 {
		s.AvgAnalysesPerUser = float64(s.TotalAnalyses) / float64(s.Users)
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM scan_runs").Scan(&s.ScanRuns); err != nil {
		return nil, fmt.Errorf("counting scan runs: %w", err)
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalyses(rows *sql.Rows) ([]Analysis, error) {
	var analyses []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, rows.Err()
}

func scanAnalysis(row rowScanner) (*Analysis, error) {
	var a Analysis
	var mode, lang, details sql.NullString
	if err := row.Scan(&a.ID, &a.UID, &a.Username, &a.ContentType, &a.Title, &a.URL,
		&a.ContentPreview, &a.Verdict, &a.Confidence, &a.Explanation, &mode, &lang,
		&a.ProcessingTime, &a.RiskLevel, &details, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Mode = mode.String
	a.Language = lang.String
	if a.Language == "" {
		a.Language = "unknown"
	}
	if details.Valid && details.String != "" {
		a.TechnicalDetails = []byte(details.String)
	}
	return &a, nil
}
