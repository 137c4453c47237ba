package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// ErrNoContent is returned when a page yields no usable article text.
var ErrNoContent = errors.New("no extractable text content")

// MinContentLength is the shortest extracted text accepted as an article.
const MinContentLength = 100

const maxBodyBytes = 5 << 20

// ContentFetcher fetches full article text via HTTP + readability extraction.
type ContentFetcher struct {
	client    *http.Client
	userAgent string
}

// NewContentFetcher creates a new content fetcher.
func NewContentFetcher(timeout time.Duration) *ContentFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ContentFetcher{
		userAgent: "veritas/1.0 (news verification)",
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// HTTPError is returned for 4xx/5xx responses.
type HTTPError struct {
	Code int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Code, http.StatusText(e.Code))
}

// Fetch downloads articleURL and returns its main text.
func (f *ContentFetcher) Fetch(ctx context.Context, articleURL string) (string, error) {
	parsedURL, err := url.Parse(articleURL)
	if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return "", fmt.Errorf("invalid url %q", articleURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", articleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &HTTPError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	text := Extract(body, parsedURL)
	if len(text) < MinContentLength {
		log.Printf("No extractable content from: %s", articleURL)
		return "", ErrNoContent
	}
	return text, nil
}

// Extract returns the article text of an HTML page. Readability is tried
// first; pages it cannot reduce fall back to a paragraph walk.
func Extract(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); len(text) >= MinContentLength {
			return text
		}
	}
	return paragraphs(body)
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"svg": true, "nav": true, "footer": true, "header": true, "form": true,
}

var textTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"blockquote": true, "li": true, "figcaption": true,
}

// paragraphs collects the text of paragraph-like elements, one per line.
func paragraphs(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var blocks []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipTags[n.Data] {
				return
			}
			if textTags[n.Data] {
				if t := collapse(nodeText(n)); t != "" {
					blocks = append(blocks, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(blocks, "\n")
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		case n.Type == html.ElementNode && skipTags[n.Data]:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
