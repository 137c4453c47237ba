package collect

import (
	"context"
	"log"

	"github.com/TobiSchelling/veritas/internal/config"
)

// Seen reports whether an article URL was already analyzed.
type Seen interface {
	HasAnalysisForURL(url string) (bool, error)
}

// Result holds the results of a collection run.
type Result struct {
	TotalFound      int
	Entries         []FeedEntry
	AlreadyAnalyzed int
	Sources         map[string]int
}

// Collector gathers candidate articles from the configured feeds.
type Collector struct {
	feedParser *FeedParser
	seen       Seen
	daysBack   int
}

// NewCollector creates a new article collector. seen may be nil.
func NewCollector(cfg *config.Config, seen Seen, daysBack int) *Collector {
	c := &Collector{seen: seen, daysBack: daysBack}
	if len(cfg.Sources.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.Sources.Feeds))
		for i, f := range cfg.Sources.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name}
		}
		c.feedParser = NewFeedParser(feeds, cfg.Sources.MaxPerFeed)
	}
	return c
}

// Collect returns the feed entries that have not been analyzed yet.
func (c *Collector) Collect(ctx context.Context) *Result {
	r := &Result{Sources: make(map[string]int)}
	if c.feedParser == nil {
		log.Println("No feeds configured")
		return r
	}

	log.Println("Collecting from RSS feeds...")
	entries := c.feedParser.ParseAll(ctx, c.daysBack)
	r.TotalFound = len(entries)

	for _, entry := range entries {
		if c.seen != nil {
			known, err := c.seen.HasAnalysisForURL(entry.URL)
			if err != nil {
				log.Printf("Checking history for %s: %v", entry.URL, err)
			}
			if known {
				r.AlreadyAnalyzed++
				continue
			}
		}
		r.Entries = append(r.Entries, entry)
		r.Sources[entry.Source]++
	}

	log.Printf("Collection complete: %d found, %d new, %d already analyzed", r.TotalFound, len(r.Entries), r.AlreadyAnalyzed)
	return r
}
