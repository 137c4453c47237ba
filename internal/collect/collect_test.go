package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/veritas/internal/config"
)

func rssFeed(items ...string) string {
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>Test</title>`
	for _, it := range items {
		body += it
	}
	return body + `</channel></rss>`
}

func rssItem(link, title string, pub time.Time, desc string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><pubDate>%s</pubDate><description><![CDATA[%s]]></description></item>`,
		title, link, pub.Format(time.RFC1123Z), desc)
}

func TestEntriesWindowAndCap(t *testing.T) {
	now := time.Now()
	feed, err := gofeed.NewParser().ParseString(rssFeed(
		rssItem("https://a.com/1", "Fresh", now, "<p>Hello &amp; welcome</p>"),
		rssItem("https://a.com/2", "Old", now.AddDate(0, 0, -10), "old"),
		rssItem("https://a.com/3", "Fresh too", now, "x"),
		rssItem("https://a.com/4", "Fresh three", now, "y"),
	))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	fp := NewFeedParser(nil, 2)
	entries := fp.entries(feed, "Test", now.AddDate(0, 0, -1))
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "Fresh" || entries[1].Title != "Fresh too" {
		t.Errorf("unexpected entries %+v", entries)
	}
	if entries[0].Content != "Hello & welcome" {
		t.Errorf("expected stripped content, got %q", entries[0].Content)
	}
}

func TestParseItemRequiresLinkAndTitle(t *testing.T) {
	if parseItem(&gofeed.Item{Title: "No link"}, "s") != nil {
		t.Error("expected nil without link")
	}
	if parseItem(&gofeed.Item{Link: "https://a.com"}, "s") != nil {
		t.Error("expected nil without title")
	}
	e := parseItem(&gofeed.Item{GUID: "https://a.com/g", Title: " T "}, "s")
	if e == nil || e.URL != "https://a.com/g" || e.Title != "T" {
		t.Errorf("expected GUID fallback, got %+v", e)
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML(`<div><b>Breaking</b>:&nbsp;news<br/>here &quot;now&quot;</div>`)
	want := "Breaking : news here \"now\""
	if got != want {
		t.Errorf("stripHTML() = %q, want %q", got, want)
	}
}

func TestExtractSourceName(t *testing.T) {
	tests := map[string]string{
		"https://www.digi24.ro/rss":          "Digi24",
		"https://blog.golang.org/feed.atom": "Golang",
		"https://localhost/feed":            "Localhost",
	}
	for in, want := range tests {
		if got := extractSourceName(in); got != want {
			t.Errorf("extractSourceName(%q) = %q, want %q", in, got, want)
		}
	}
}

type seenSet map[string]bool

func (s seenSet) HasAnalysisForURL(url string) (bool, error) { return s[url], nil }

func TestCollectorSkipsAnalyzedAndDuplicates(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFeed(
			rssItem("https://a.com/1", "One", now, "a"),
			rssItem("https://a.com/2", "Two", now, "b"),
			rssItem("https://a.com/1", "One again", now, "a"),
		))
	}))
	defer srv.Close()

	cfg := &config.Config{Sources: config.Sources{
		Feeds:      []config.Feed{{URL: srv.URL, Name: "Local"}},
		MaxPerFeed: 20,
	}}
	c := NewCollector(cfg, seenSet{"https://a.com/2": true}, 1)
	r := c.Collect(context.Background())

	if r.TotalFound != 2 {
		t.Errorf("expected 2 unique entries, got %d", r.TotalFound)
	}
	if len(r.Entries) != 1 || r.Entries[0].URL != "https://a.com/1" {
		t.Errorf("unexpected entries %+v", r.Entries)
	}
	if r.AlreadyAnalyzed != 1 {
		t.Errorf("expected 1 already analyzed, got %d", r.AlreadyAnalyzed)
	}
	if r.Sources["Local"] != 1 {
		t.Errorf("unexpected sources %v", r.Sources)
	}
}

func TestCollectorWithoutFeeds(t *testing.T) {
	r := NewCollector(&config.Config{}, nil, 1).Collect(context.Background())
	if r.TotalFound != 0 || len(r.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", r)
	}
}
