package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/TobiSchelling/veritas/internal/collect"
	"github.com/TobiSchelling/veritas/internal/config"
	"github.com/TobiSchelling/veritas/internal/database"
	"github.com/TobiSchelling/veritas/internal/fetch"
	"github.com/TobiSchelling/veritas/internal/hybrid"
	"github.com/TobiSchelling/veritas/internal/verdict"
	"github.com/TobiSchelling/veritas/internal/video"
)

type stubText struct {
	calls []hybrid.Mode
	texts []string
}

func (s *stubText) AnalyzeMode(_ context.Context, mode hybrid.Mode, text string) (verdict.Verdict, error) {
	s.calls = append(s.calls, mode)
	s.texts = append(s.texts, text)
	return verdict.Verdict{
		Label:              verdict.Fake,
		Confidence:         0.9,
		RiskLevel:          verdict.RiskLow,
		Consensus:          verdict.ConsensusStrong,
		Explanation:        "looks fabricated",
		Language:           "en",
		Mode:               string(mode),
		IndividualVerdicts: map[string]verdict.Label{"ai": verdict.Fake},
	}, nil
}

func (s *stubText) Availability() hybrid.Availability {
	return hybrid.NewAvailability(verdict.SourceBoW)
}

type stubFetcher struct {
	text string
	err  error
}

func (f stubFetcher) Fetch(context.Context, string) (string, error) { return f.text, f.err }

type stubVideo struct{ report video.Report }

func (v stubVideo) Analyze(context.Context, string, string) (video.Report, error) { return v.report, nil }
func (v stubVideo) DecoderAvailable() bool                                         { return true }

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestService(t *testing.T, text TextAnalyzer, f Fetcher) (*Service, *database.DB) {
	t.Helper()
	db := openTestDB(t)
	return &Service{
		cfg:         &config.Config{Sources: config.Sources{LookbackDays: 2}},
		store:       db,
		fetcher:     f,
		text:        text,
		defaultMode: hybrid.ModeHybrid,
		now:         func() time.Time { return time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC) },
	}, db
}

func TestAnalyzeTextPersists(t *testing.T) {
	text := &stubText{}
	svc, db := newTestService(t, text, nil)

	out, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "  Shocking miracle cure found  ", Username: "alice"})
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if out.Label != verdict.Fake || out.AnalysisID == "" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if text.calls[0] != hybrid.ModeHybrid {
		t.Errorf("expected default mode, got %q", text.calls[0])
	}
	if text.texts[0] != "Shocking miracle cure found" {
		t.Errorf("expected trimmed text, got %q", text.texts[0])
	}

	stored, err := db.GetAnalysis(out.AnalysisID)
	if err != nil || stored == nil {
		t.Fatalf("expected stored analysis, got %v %v", stored, err)
	}
	if stored.Username != "alice" || stored.ContentType != database.ContentText || stored.Verdict != "fake" {
		t.Errorf("unexpected stored analysis %+v", stored)
	}
	if stored.CreatedAt != "2026-02-06 12:00:00" {
		t.Errorf("unexpected created_at %q", stored.CreatedAt)
	}

	var details map[string]any
	if err := json.Unmarshal(stored.TechnicalDetails, &details); err != nil {
		t.Fatalf("technical details: %v", err)
	}
	if details["text_length"].(float64) != 27 {
		t.Errorf("unexpected text_length %v", details["text_length"])
	}
}

func TestAnalyzeTextModes(t *testing.T) {
	text := &stubText{}
	svc, _ := newTestService(t, text, nil)

	if _, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "x", Mode: "ML_ONLY"}); err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if text.calls[0] != hybrid.ModeMLOnly {
		t.Errorf("expected ml_only, got %q", text.calls[0])
	}

	_, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "x", Mode: "psychic"})
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestAnalyzeTextEmpty(t *testing.T) {
	svc, _ := newTestService(t, &stubText{}, nil)
	_, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "   "})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestAnalyzeTextFromURL(t *testing.T) {
	text := &stubText{}
	svc, db := newTestService(t, text, stubFetcher{text: "Article body from the page"})

	out, err := svc.AnalyzeText(context.Background(), TextRequest{URL: "https://example.com/a"})
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if text.texts[0] != "Article body from the page" {
		t.Errorf("expected fetched text, got %q", text.texts[0])
	}
	stored, _ := db.GetAnalysis(out.AnalysisID)
	if stored.ContentType != database.ContentURL || stored.URL == nil || *stored.URL != "https://example.com/a" {
		t.Errorf("unexpected stored analysis %+v", stored)
	}
	if stored.Username != AnonymousUser {
		t.Errorf("expected anonymous user, got %q", stored.Username)
	}
}

func TestAnalyzeTextURLWithoutContent(t *testing.T) {
	svc, _ := newTestService(t, &stubText{}, stubFetcher{err: fetch.ErrNoContent})
	_, err := svc.AnalyzeText(context.Background(), TextRequest{URL: "https://example.com/spa"})
	if !errors.Is(err, fetch.ErrNoContent) || !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction wrapping ErrNoContent, got %v", err)
	}
}

func TestAnalyzeVideoSkipsFallbackPersistence(t *testing.T) {
	svc, db := newTestService(t, &stubText{}, nil)

	svc.video = stubVideo{report: video.Report{Verdict: verdict.Verdict{Label: verdict.Authentic, Confidence: 0.8, Mode: video.FallbackMode}}}
	out, err := svc.AnalyzeVideo(context.Background(), VideoRequest{Path: "/tmp/x.mp4", Filename: "x.mp4"})
	if err != nil {
		t.Fatalf("AnalyzeVideo: %v", err)
	}
	if out.AnalysisID != "" {
		t.Error("fallback verdicts must not be stored")
	}

	svc.video = stubVideo{report: video.Report{Verdict: verdict.Verdict{Label: verdict.Deepfake, Confidence: 0.9, Mode: video.AdvancedMode, Language: "visual"}}}
	out, err = svc.AnalyzeVideo(context.Background(), VideoRequest{Path: "/tmp/y.mp4", Filename: "y.mp4", Username: "bob"})
	if err != nil {
		t.Fatalf("AnalyzeVideo: %v", err)
	}
	stored, _ := db.GetAnalysis(out.AnalysisID)
	if stored == nil || stored.ContentType != database.ContentVideo || stored.Verdict != "deepfake" {
		t.Errorf("unexpected stored video analysis %+v", stored)
	}
}

func TestAnalyzeVideoDisabled(t *testing.T) {
	svc, _ := newTestService(t, &stubText{}, nil)
	if _, err := svc.AnalyzeVideo(context.Background(), VideoRequest{}); !errors.Is(err, ErrVideoDisabled) {
		t.Errorf("expected ErrVideoDisabled, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	svc, _ := newTestService(t, &stubText{}, nil)
	st := svc.Status()
	if st.Status != "operational" || st.Video {
		t.Errorf("unexpected status %+v", st)
	}
	if !st.Timestamp.Equal(svc.now()) {
		t.Errorf("expected injected clock, got %v", st.Timestamp)
	}
}

type stubEntries struct{ r *collect.Result }

func (s stubEntries) Collect(context.Context) *collect.Result { return s.r }

func TestScan(t *testing.T) {
	text := &stubText{}
	svc, db := newTestService(t, text, stubFetcher{err: errors.New("blocked")})

	src := stubEntries{r: &collect.Result{
		TotalFound: 3,
		Entries: []collect.FeedEntry{
			{URL: "https://a.com/1", Title: "One", Content: "first summary", Source: "A"},
			{URL: "https://a.com/2", Title: "Two", Content: "second summary", Source: "A"},
		},
		AlreadyAnalyzed: 1,
	}}
	r := svc.scan(context.Background(), src, 3, "")

	if r.PeriodID != "2026-02-04..2026-02-06" {
		t.Errorf("unexpected period %q", r.PeriodID)
	}
	if len(r.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(r.Steps))
	}
	for _, s := range r.Steps {
		if s.Err != nil {
			t.Errorf("step %s failed: %v", s.Name, s.Err)
		}
	}
	if r.Stats.Total != 2 || r.Stats.Fake != 2 {
		t.Errorf("unexpected stats %+v", r.Stats)
	}
	if text.texts[0] != "One\nfirst summary" {
		t.Errorf("expected feed summary fallback, got %q", text.texts[0])
	}

	has, _ := db.HasAnalysisForURL("https://a.com/2")
	if !has {
		t.Error("expected scanned url to be recorded")
	}
	last, _ := db.GetLastScanDate()
	if last != "2026-02-06" {
		t.Errorf("expected last scan date 2026-02-06, got %q", last)
	}
	if days := svc.ScanDays(); days != 1 {
		t.Errorf("expected 1 day since last scan, got %d", days)
	}
}

func TestScanDaysFirstRun(t *testing.T) {
	svc, _ := newTestService(t, &stubText{}, nil)
	if days := svc.ScanDays(); days != 2 {
		t.Errorf("expected configured lookback 2, got %d", days)
	}
}

func TestTitleFrom(t *testing.T) {
	if got := titleFrom("short"); got != "short" {
		t.Errorf("unexpected title %q", got)
	}
	long := "This headline is definitely much longer than fifty characters in total"
	got := titleFrom(long)
	if len([]rune(got)) != titleLength+3 {
		t.Errorf("expected truncated title, got %q", got)
	}
}
