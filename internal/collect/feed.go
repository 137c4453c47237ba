package collect

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	"golang.org/x/net/html"
)

// DefaultMaxPerFeed caps the entries taken from a single feed.
const DefaultMaxPerFeed = 20

// FeedEntry is a candidate article taken from a feed.
type FeedEntry struct {
	URL       string
	Title     string
	Published time.Time // zero when the feed omits dates
	Content   string
	Source    string
}

// FeedConfig represents a single feed configuration.
type FeedConfig struct {
	URL  string
	Name string
}

// FeedParser parses RSS/Atom feeds.
type FeedParser struct {
	feeds      []FeedConfig
	maxPerFeed int
	parser     *gofeed.Parser
}

// NewFeedParser creates a new FeedParser.
func NewFeedParser(feeds []FeedConfig, maxPerFeed int) *FeedParser {
	if maxPerFeed <= 0 {
		maxPerFeed = DefaultMaxPerFeed
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "veritas/1.0 (news verification)"
	return &FeedParser{feeds: feeds, maxPerFeed: maxPerFeed, parser: parser}
}

// ParseAll parses all configured feeds and returns entries within daysBack,
// deduplicated by URL.
func (fp *FeedParser) ParseAll(ctx context.Context, daysBack int) []FeedEntry {
	cutoff := time.Now().AddDate(0, 0, -daysBack)
	var all []FeedEntry

	for _, fc := range fp.feeds {
		name := fc.Name
		if name == "" {
			name = extractSourceName(fc.URL)
		}

		feed, err := fp.parser.ParseURLWithContext(fc.URL, ctx)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", fc.URL, err)
			continue
		}
		entries := fp.entries(feed, name, cutoff)
		all = append(all, entries...)
		log.Printf("Parsed %d entries from %s (within %d days)", len(entries), name, daysBack)
	}

	return lo.UniqBy(all, func(e FeedEntry) string { return e.URL })
}

func (fp *FeedParser) entries(feed *gofeed.Feed, sourceName string, cutoff time.Time) []FeedEntry {
	day := cutoff.Truncate(24 * time.Hour)
	var entries []FeedEntry
	for _, item := range feed.Items {
		if len(entries) >= fp.maxPerFeed {
			break
		}
		entry := parseItem(item, sourceName)
		if entry == nil {
			continue
		}
		// Undated items are kept.
		if !entry.Published.IsZero() && entry.Published.Before(day) {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

func parseItem(item *gofeed.Item, source string) *FeedEntry {
	link := lo.Ternary(item.Link != "", item.Link, item.GUID)
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return nil
	}

	e := &FeedEntry{URL: link, Title: title, Source: source}
	switch {
	case item.PublishedParsed != nil:
		e.Published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		e.Published = *item.UpdatedParsed
	}
	e.Content = stripHTML(lo.Ternary(item.Content != "", item.Content, item.Description))
	return e
}

// stripHTML returns the text of an HTML fragment with entities decoded and
// whitespace collapsed.
func stripHTML(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		default:
			sb.WriteByte(' ')
		}
	}
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	labels := strings.Split(strings.ToLower(u.Hostname()), ".")
	for len(labels) > 2 && lo.Contains(hostPrefixes, labels[0]) {
		labels = labels[1:]
	}
	name := labels[0]
	if len(labels) >= 2 {
		name = labels[len(labels)-2]
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

var hostPrefixes = []string{"www", "blog", "blogs", "rss", "feeds", "news"}
