package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Budget vote</title></head>
<body>
<nav><a href="/">Home</a><a href="/politics">Politics</a></nav>
<article>
<h1>Parliament approves the annual budget</h1>
<p>The parliament approved the annual budget on Tuesday after a debate that lasted more than eleven hours, according to the official session record.</p>
<p>The finance ministry said the deficit target remains unchanged and that spending on hospitals and schools will rise compared with last year.</p>
<p>Opposition parties voted against the proposal and announced they would challenge several articles before the constitutional court.</p>
</article>
<footer>Copyright</footer>
<script>var tracking = "ignore me";</script>
</body></html>`

func TestFetchExtractsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "veritas") {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := NewContentFetcher(5 * time.Second)
	text, err := f.Fetch(context.Background(), srv.URL+"/news/budget")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(text, "annual budget") {
		t.Errorf("expected article text, got %q", text)
	}
	if strings.Contains(text, "tracking") {
		t.Errorf("script content leaked into text: %q", text)
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewContentFetcher(0).Fetch(context.Background(), srv.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestFetchNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="app"></div><script>render()</script></body></html>`))
	}))
	defer srv.Close()

	_, err := NewContentFetcher(0).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestFetchInvalidURL(t *testing.T) {
	for _, u := range []string{"", "not a url", "ftp://example.com/file"} {
		if _, err := NewContentFetcher(0).Fetch(context.Background(), u); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestParagraphFallback(t *testing.T) {
	body := []byte(`<html><body>
<header>Site name</header>
<p>First   paragraph
 of text.</p>
<ul><li>Item one</li></ul>
<p><b>Bold</b> start.</p>
<script>nope()</script>
</body></html>`)

	got := paragraphs(body)
	want := "First paragraph of text.\nItem one\nBold start."
	if got != want {
		t.Errorf("paragraphs() = %q, want %q", got, want)
	}
}
