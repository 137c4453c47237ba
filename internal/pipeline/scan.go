package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/TobiSchelling/veritas/internal/collect"
	"github.com/TobiSchelling/veritas/internal/database"
	"github.com/TobiSchelling/veritas/internal/hybrid"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

// ScanUser owns analyses produced by feed scans.
const ScanUser = "scanner"

// StepResult holds the result of a single scan step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// ScanResult holds the results of a full scan run.
type ScanResult struct {
	PeriodID string
	Steps    []StepResult
	Stats    hybrid.Statistics
}

// EntrySource yields the feed entries to analyze.
type EntrySource interface {
	Collect(ctx context.Context) *collect.Result
}

// ScanDays returns how many days a scan should look back: the configured
// lookback for the first scan, otherwise the days since the last one.
func (s *Service) ScanDays() int {
	fallback := s.cfg.Sources.LookbackDays
	if fallback <= 0 {
		fallback = 1
	}
	if s.store == nil {
		return fallback
	}
	last, err := s.store.GetLastScanDate()
	if err != nil || last == "" {
		return fallback
	}
	days, err := database.DaysSince(last, s.now())
	if err != nil {
		return fallback
	}
	if days < 1 {
		return 1
	}
	return days
}

// Scan collects new feed articles from the last daysBack days, analyzes
// each in mode and records a summary of the run.
func (s *Service) Scan(ctx context.Context, daysBack int, mode string) *ScanResult {
	if daysBack <= 0 {
		daysBack = s.ScanDays()
	}
	var seen collect.Seen
	if s.store != nil {
		seen = s.store
	}
	return s.scan(ctx, collect.NewCollector(s.cfg, seen, daysBack), daysBack, mode)
}

func (s *Service) scan(ctx context.Context, src EntrySource, daysBack int, mode string) *ScanResult {
	r := &ScanResult{PeriodID: database.PeriodFor(s.now(), daysBack)}

	resolved, err := hybrid.ParseMode(mode, s.defaultMode)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Collect", Err: err})
		return r
	}

	// Step 1: Collect
	log.Println("Step 1/3: Collecting articles...")
	collected := src.Collect(ctx)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Found %d new articles (%d total, %d already analyzed)", len(collected.Entries), collected.TotalFound, collected.AlreadyAnalyzed),
	})

	// Step 2: Analyze
	log.Println("Step 2/3: Analyzing articles...")
	var verdicts []verdict.Verdict
	failed := 0
	for i, entry := range collected.Entries {
		if ctx.Err() != nil {
			break
		}
		req := TextRequest{URL: entry.URL, Mode: string(resolved), Title: entry.Title, Username: ScanUser}
		if s.fetcher == nil {
			req.Text = entry.Title + "\n" + entry.Content
		}
		out, err := s.AnalyzeText(ctx, req)
		if err != nil {
			// Pages that cannot be fetched are judged on the feed summary.
			log.Printf("Fetching %s failed (%v), using the feed summary", entry.URL, err)
			req.Text = entry.Title + "\n" + entry.Content
			out, err = s.AnalyzeText(ctx, req)
		}
		if err != nil {
			failed++
			log.Printf("Error analyzing %s: %v", entry.URL, err)
			continue
		}
		verdicts = append(verdicts, out.Verdict)
		log.Printf("[%d/%d] %s: %s (%.2f)", i+1, len(collected.Entries), entry.Title, out.Label, out.Confidence)
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Analyze",
		Summary: fmt.Sprintf("Analyzed %d articles, %d failed", len(verdicts), failed),
	})

	// Step 3: Summarize
	log.Println("Step 3/3: Summarizing...")
	r.Stats = hybrid.Summarize(verdicts)
	step := StepResult{
		Name: "Summarize",
		Summary: fmt.Sprintf("%d fake, %d real, %d inconclusive (%.1f%% fake, average confidence %.2f)",
			r.Stats.Fake, r.Stats.Real, r.Stats.Inconclusive, r.Stats.FakePercentage, r.Stats.AverageConfidence),
	}
	if s.store != nil {
		_, step.Err = s.store.InsertScanRun(&database.ScanRun{
			PeriodID:          r.PeriodID,
			Mode:              string(resolved),
			ArticleCount:      collected.TotalFound,
			AnalyzedCount:     r.Stats.Total,
			FakeCount:         r.Stats.Fake,
			RealCount:         r.Stats.Real,
			InconclusiveCount: r.Stats.Inconclusive,
			AverageConfidence: r.Stats.AverageConfidence,
		})
	}
	r.Steps = append(r.Steps, step)
	return r
}
