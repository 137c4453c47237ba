package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseJSONResponsePlain(t *testing.T) {
	result := ParseJSONResponse(`{"key": "value", "num": 42}`)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["key"] != "value" {
		t.Errorf("expected key='value', got %v", result["key"])
	}
	if result["num"] != float64(42) {
		t.Errorf("expected num=42, got %v", result["num"])
	}
}

func TestParseJSONResponseWithCodeFence(t *testing.T) {
	text := "```json\n{\"is_fake\": true}\n```"
	result := ParseJSONResponse(text)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["is_fake"] != true {
		t.Errorf("expected is_fake=true, got %v", result["is_fake"])
	}
}

func TestParseJSONResponseSurroundedByProse(t *testing.T) {
	text := "Here is my assessment:\n{\"confidence\": 0.8}\nHope this helps."
	result := ParseJSONResponse(text)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["confidence"] != 0.8 {
		t.Errorf("expected confidence=0.8, got %v", result["confidence"])
	}
}

func TestParseJSONResponseInvalid(t *testing.T) {
	if result := ParseJSONResponse("this text is clearly fake"); result != nil {
		t.Error("expected nil for invalid JSON")
	}
	if result := ParseJSONResponse(""); result != nil {
		t.Error("expected nil for empty string")
	}
}

func TestDecodeJSONResponse(t *testing.T) {
	var out struct {
		IsFake   bool     `json:"is_fake"`
		RedFlags []string `json:"red_flags"`
	}
	if err := DecodeJSONResponse("```\n{\"is_fake\": true, \"red_flags\": [\"vague sources\"]}\n```", &out); err != nil {
		t.Fatalf("DecodeJSONResponse: %v", err)
	}
	if !out.IsFake || len(out.RedFlags) != 1 {
		t.Errorf("unexpected decode result: %+v", out)
	}
	if err := DecodeJSONResponse("   ", &out); err == nil {
		t.Error("expected error for empty response")
	}
}

func TestOpenAIProviderGenerate(t *testing.T) {
	var got struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices": [{"message": {"content": "hello"}}]}`))
	}))
	defer srv.Close()

	p := &OpenAIProvider{Model: "gpt-test", APIKey: "secret", BaseURL: srv.URL, Temperature: 0.05, System: "be brief", client: srv.Client()}
	out, err := p.Generate(context.Background(), "hi", 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "hello" {
		t.Errorf("expected hello, got %q", out)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("expected system + user messages, got %+v", got.Messages)
	}
	if got.Temperature != 0.05 {
		t.Errorf("expected temperature 0.05, got %v", got.Temperature)
	}
}

func TestOpenAIProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := &OpenAIProvider{Model: "m", APIKey: "k", BaseURL: srv.URL, client: srv.Client()}
	if _, err := p.Generate(context.Background(), "hi", 10); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestOpenAIProviderNotConfigured(t *testing.T) {
	p := NewOpenAIProvider("m", "VERITAS_TEST_UNSET_KEY")
	if p.IsConfigured() {
		t.Fatal("expected unconfigured provider")
	}
	if _, err := p.Generate(context.Background(), "hi", 10); err == nil {
		t.Fatal("expected error without key")
	}
}

func TestOpenAIEmbedderOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"index": 1, "embedding": [0, 1]}, {"index": 0, "embedding": [1, 0]}]}`))
	}))
	defer srv.Close()

	e := &OpenAIEmbedder{Model: "m", APIKey: "k", BaseURL: srv.URL, client: srv.Client()}
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"embeddings": [[0.1, 0.2]]}`))
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", srv.URL+"/")
	vecs, err := e.Embed(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 2 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
}

func TestPerspectiveClientScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("missing key parameter")
		}
		var body struct {
			Comment    map[string]string `json:"comment"`
			DoNotStore bool              `json:"doNotStore"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if !body.DoNotStore || body.Comment["text"] != "you idiot" {
			t.Errorf("unexpected body: %+v", body)
		}
		w.Write([]byte(`{"attributeScores": {"TOXICITY": {"summaryScore": {"value": 0.82}}}}`))
	}))
	defer srv.Close()

	p := &PerspectiveClient{APIKey: "k", Endpoint: srv.URL, Attributes: []string{"TOXICITY"}, client: srv.Client()}
	scores, err := p.Score(context.Background(), "you idiot")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if scores["toxicity"] != 0.82 {
		t.Errorf("expected toxicity 0.82, got %v", scores)
	}
}

func TestPerspectiveClientUnexpectedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := &PerspectiveClient{APIKey: "k", Endpoint: srv.URL, client: srv.Client()}
	if _, err := p.Score(context.Background(), "x"); err == nil {
		t.Fatal("expected error for response without scores")
	}
}

type countingProvider struct{ calls int }

func (c *countingProvider) Generate(_ context.Context, _ string, _ int) (string, error) {
	c.calls++
	return "ok", nil
}

func (c *countingProvider) IsConfigured() bool { return true }

func TestThrottleProviderHonoursContext(t *testing.T) {
	inner := &countingProvider{}
	p := ThrottleProvider(inner, 1)

	if _, err := p.Generate(context.Background(), "a", 1); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Generate(ctx, "b", 1); err == nil {
		t.Fatal("expected rate limiter error for second call within a minute")
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 delegated call, got %d", inner.calls)
	}
	if !p.IsConfigured() {
		t.Error("expected embedded IsConfigured to delegate")
	}
}

func TestThrottleUnlimited(t *testing.T) {
	inner := &countingProvider{}
	p := ThrottleProvider(inner, 0)
	for i := 0; i < 5; i++ {
		if _, err := p.Generate(context.Background(), "a", 1); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
}

func TestCreateEmbedderUnknownProvider(t *testing.T) {
	if e := CreateEmbedder(EmbedderConfig{Provider: "none"}); e != nil {
		t.Errorf("expected nil embedder, got %T", e)
	}
}
