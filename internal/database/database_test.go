package database

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func newAnalysis(uid, user, verdict string, conf float64) *Analysis {
	return &Analysis{
		UID:            uid,
		Username:       user,
		ContentType:    ContentText,
		Title:          ptr("Title " + uid),
		ContentPreview: ptr("preview"),
		Verdict:        verdict,
		Confidence:     conf,
		Explanation:    ptr("because"),
		Mode:           "hybrid",
		Language:       "en",
		ProcessingTime: 0.25,
		RiskLevel:      ptr("low"),
	}
}

func TestInsertAndGetAnalysis(t *testing.T) {
	db := openTestDB(t)
	a := newAnalysis("a1", "alice", "fake", 0.95)
	a.URL = ptr("https://example.com/story")
	a.TechnicalDetails = json.RawMessage(`{"agreement":true}`)

	id, err := db.InsertAnalysis(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero analysis ID")
	}

	got, err := db.GetAnalysis("a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected analysis, got nil")
	}
	if got.Verdict != "fake" || got.Confidence != 0.95 {
		t.Errorf("unexpected verdict %q %.2f", got.Verdict, got.Confidence)
	}
	if got.URL == nil || *got.URL != "https://example.com/story" {
		t.Errorf("expected url to round-trip, got %v", got.URL)
	}
	if string(got.TechnicalDetails) != `{"agreement":true}` {
		t.Errorf("unexpected technical details %s", got.TechnicalDetails)
	}
	if got.CreatedAt == "" {
		t.Error("expected created_at default")
	}
}

func TestGetAnalysisMissing(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetAnalysis("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing analysis")
	}
}

func TestInsertDuplicateUID(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.InsertAnalysis(newAnalysis("dup", "alice", "real", 0.8)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := db.InsertAnalysis(newAnalysis("dup", "alice", "real", 0.8)); err == nil {
		t.Error("expected error for duplicate uid")
	}
}

func TestInsertRejectsUnknownContentType(t *testing.T) {
	db := openTestDB(t)
	a := newAnalysis("x", "alice", "real", 0.8)
	a.ContentType = "audio"
	if _, err := db.InsertAnalysis(a); err == nil {
		t.Error("expected check constraint error")
	}
}

func TestGetUserHistoryOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	for i, ts := range []string{"2026-02-01 10:00:00", "2026-02-03 10:00:00", "2026-02-02 10:00:00"} {
		a := newAnalysis(string(rune('a'+i)), "alice", "real", 0.7)
		a.CreatedAt = ts
		db.InsertAnalysis(a)
	}
	db.InsertAnalysis(newAnalysis("other", "bob", "fake", 0.9))

	history, err := db.GetUserHistory("alice", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 analyses, got %d", len(history))
	}
	if history[0].UID != "b" || history[1].UID != "c" || history[2].UID != "a" {
		t.Errorf("expected newest first, got %s %s %s", history[0].UID, history[1].UID, history[2].UID)
	}

	limited, _ := db.GetUserHistory("alice", 2)
	if len(limited) != 2 {
		t.Errorf("expected 2 analyses with limit, got %d", len(limited))
	}
}

func TestGetUserStats(t *testing.T) {
	db := openTestDB(t)
	db.InsertAnalysis(newAnalysis("1", "alice", "fake", 0.9))
	db.InsertAnalysis(newAnalysis("2", "alice", "real", 0.7))
	v := newAnalysis("3", "alice", "deepfake", 0.8)
	v.ContentType = ContentVideo
	v.Language = "visual"
	v.Mode = "ffmpeg_advanced"
	db.InsertAnalysis(v)
	i := newAnalysis("4", "alice", "inconclusive", 0.4)
	i.ContentType = ContentURL
	db.InsertAnalysis(i)
	db.InsertAnalysis(newAnalysis("5", "bob", "fake", 0.9))

	stats, err := db.GetUserStats("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 4 || stats.Fake != 2 || stats.Real != 1 || stats.Inconclusive != 1 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.FakePercentage != 50 {
		t.Errorf("expected 50%% fake, got %.1f", stats.FakePercentage)
	}
	if stats.AverageConfidence < 0.699 || stats.AverageConfidence > 0.701 {
		t.Errorf("expected average confidence 0.7, got %.3f", stats.AverageConfidence)
	}
	if stats.RecentAnalyses != 4 {
		t.Errorf("expected 4 recent analyses, got %d", stats.RecentAnalyses)
	}
	if stats.LanguageDistribution["en"] != 3 || stats.LanguageDistribution["visual"] != 1 {
		t.Errorf("unexpected language distribution %v", stats.LanguageDistribution)
	}
	if stats.ModeDistribution["hybrid"] != 3 {
		t.Errorf("unexpected mode distribution %v", stats.ModeDistribution)
	}
	if stats.AnalysisTypes[ContentText] != 2 || stats.AnalysisTypes[ContentVideo] != 1 || stats.AnalysisTypes[ContentURL] != 1 {
		t.Errorf("unexpected analysis types %v", stats.AnalysisTypes)
	}
	if len(stats.RecentPredictions) != 4 {
		t.Errorf("expected 4 recent predictions, got %d", len(stats.RecentPredictions))
	}
}

func TestGetUserStatsEmpty(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetUserStats("nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 0 || stats.FakePercentage != 0 || stats.AverageConfidence != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if stats.AnalysisTypes[ContentVideo] != 0 {
		t.Errorf("expected zeroed analysis types, got %v", stats.AnalysisTypes)
	}
}

func TestHasAnalysisForURL(t *testing.T) {
	db := openTestDB(t)
	a := newAnalysis("u", "scanner", "real", 0.8)
	a.URL = ptr("https://a.com/1")
	db.InsertAnalysis(a)

	has, err := db.HasAnalysisForURL("https://a.com/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Error("expected url to be known")
	}
	has, _ = db.HasAnalysisForURL("https://a.com/2")
	if has {
		t.Error("expected url to be unknown")
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalAnalyses != 0 {
		t.Errorf("expected 0 analyses, got %d", stats.TotalAnalyses)
	}

	db.InsertAnalysis(newAnalysis("1", "alice", "fake", 0.9))
	db.InsertAnalysis(newAnalysis("2", "alice", "authentic", 0.8))
	db.InsertAnalysis(newAnalysis("3", "bob", "real", 0.8))
	db.InsertScanRun(&ScanRun{PeriodID: "2026-02-06", Mode: "hybrid"})

	stats, _ = db.GetStats()
	if stats.TotalAnalyses != 3 {
		t.Errorf("expected 3 analyses, got %d", stats.TotalAnalyses)
	}
	if stats.FakeCount != 1 || stats.RealCount != 2 {
		t.Errorf("unexpected verdict counts %+v", stats)
	}
	if stats.Users != 2 || stats.ActiveUsers != 2 {
		t.Errorf("expected 2 users, got %d/%d", stats.Users, stats.ActiveUsers)
	}
	if stats.AvgAnalysesPerUser != 1.5 {
		t.Errorf("expected 1.5 analyses per user, got %.2f", stats.AvgAnalysesPerUser)
	}
	if stats.ScanRuns != 1 {
		t.Errorf("expected 1 scan run, got %d", stats.ScanRuns)
	}
}

func TestScanRuns(t *testing.T) {
	db := openTestDB(t)

	last, err := db.GetLastScanDate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != "" {
		t.Errorf("expected empty string, got %q", last)
	}

	db.InsertScanRun(&ScanRun{PeriodID: "2026-02-01..2026-02-05", Mode: "hybrid", ArticleCount: 10, AnalyzedCount: 8, FakeCount: 3})
	db.InsertScanRun(&ScanRun{PeriodID: "2026-02-03", Mode: "ml_only"})

	last, _ = db.GetLastScanDate()
	if last != "2026-02-05" {
		t.Errorf("expected '2026-02-05', got %q", last)
	}

	runs, err := db.GetScanRuns(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].PeriodID != "2026-02-03" || runs[1].FakeCount != 3 {
		t.Errorf("unexpected runs %+v", runs)
	}
}

func TestToday(t *testing.T) {
	today := Today()
	if len(today) != 10 {
		t.Errorf("expected 10-char date, got %q", today)
	}
	if today[4] != '-' || today[7] != '-' {
		t.Errorf("expected YYYY-MM-DD format, got %q", today)
	}
}

func TestFormatPeriodDisplaySingleDay(t *testing.T) {
	result := FormatPeriodDisplay("2026-02-06")
	if result == "" || result == "2026-02-06" {
		t.Errorf("expected formatted date, got %q", result)
	}
	if !strings.Contains(result, "Feb") || !strings.Contains(result, "2026") {
		t.Errorf("expected 'Feb' and '2026' in %q", result)
	}
}

func TestFormatPeriodDisplayRange(t *testing.T) {
	result := FormatPeriodDisplay("2026-02-01..2026-02-06")
	if !strings.Contains(result, "Feb 01") || !strings.Contains(result, "Feb 06") {
		t.Errorf("expected both dates in %q", result)
	}
}

func TestMakePeriodID(t *testing.T) {
	if got := MakePeriodID("2026-02-06", "2026-02-06"); got != "2026-02-06" {
		t.Errorf("expected '2026-02-06', got %q", got)
	}
	if got := MakePeriodID("2026-02-01", "2026-02-06"); got != "2026-02-01..2026-02-06" {
		t.Errorf("expected '2026-02-01..2026-02-06', got %q", got)
	}
}

func TestFormatPeriodDisplayInvalid(t *testing.T) {
	if got := FormatPeriodDisplay("latest"); got != "latest" {
		t.Errorf("expected id unchanged, got %q", got)
	}
	if got := FormatPeriodDisplay("2026-02-01..soon"); got != "2026-02-01..soon" {
		t.Errorf("expected id unchanged, got %q", got)
	}
}

func TestPeriodFor(t *testing.T) {
	end := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	if got := PeriodFor(end, 1); got != "2026-03-02" {
		t.Errorf("expected single day, got %q", got)
	}
	if got := PeriodFor(end, 3); got != "2026-02-28..2026-03-02" {
		t.Errorf("expected range across month end, got %q", got)
	}
	if got := PeriodFor(end, 0); got != "2026-03-02" {
		t.Errorf("expected zero days to clamp to one, got %q", got)
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, 2, 6, 23, 30, 0, 0, time.UTC)
	days, err := DaysSince("2026-02-03", now)
	if err != nil {
		t.Fatalf("DaysSince: %v", err)
	}
	if days != 3 {
		t.Errorf("expected 3, got %d", days)
	}
	if _, err := DaysSince("yesterday", now); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestPeriodEndDate(t *testing.T) {
	if got := PeriodEndDate("2026-02-01..2026-02-06"); got != "2026-02-06" {
		t.Errorf("unexpected end %q", got)
	}
	if got := PeriodEndDate("2026-02-06"); got != "2026-02-06" {
		t.Errorf("unexpected end %q", got)
	}
}
