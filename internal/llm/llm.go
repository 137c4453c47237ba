package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

// Provider completes prompts for the AI judges.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	IsConfigured() bool
}

// Embedder turns texts into vectors for the similarity scorer.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

const (
	defaultTemperature = 0.3
	defaultTimeout     = 120 * time.Second
	// DefaultOpenAIURL is the OpenAI API base URL.
	DefaultOpenAIURL = "https://api.openai.com/v1"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func messages(system, prompt string) []chatMessage {
	var msgs []chatMessage
	if system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	return append(msgs, chatMessage{Role: "user", Content: prompt})
}

// postJSON sends body to url and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// OllamaProvider talks to a local Ollama server.
type OllamaProvider struct {
	Model       string
	BaseURL     string
	Temperature float64
	System      string
	client      *http.Client
}

// NewOllamaProvider returns a provider for model at baseURL.
func NewOllamaProvider(model, baseURL string) *OllamaProvider {
	return &OllamaProvider{
		Model:       model,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Temperature: defaultTemperature,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

// IsConfigured reports whether Ollama answers and has the model pulled.
func (o *OllamaProvider) IsConfigured() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	modelBase := strings.SplitN(o.Model, ":", 2)[0]
	for _, m := range result.Models {
		if strings.Contains(m.Name, modelBase) {
			return true
		}
	}
	log.Printf("Ollama model %q not found", o.Model)
	return false
}

// Generate runs prompt through the local Ollama chat endpoint.
func (o *OllamaProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]any{
		"model":    o.Model,
		"messages": messages(o.System, prompt),
		"stream":   false,
		"options": map[string]any{
			"num_predict": maxTokens,
			"temperature": o.Temperature,
		},
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := postJSON(ctx, o.client, o.BaseURL+"/api/chat", "", body, &result); err != nil {
		return "", fmt.Errorf("ollama API error: %w", err)
	}
	return result.Message.Content, nil
}

// OllamaEmbedder calls /api/embed.
type OllamaEmbedder struct {
	Model   string
	BaseURL string
	client  *http.Client
}

// NewOllamaEmbedder returns an embedder backed by a local Ollama.
func NewOllamaEmbedder(model, baseURL string) *OllamaEmbedder {
	return &OllamaEmbedder{
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// Embed returns one vector per text, in input order.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	body := map[string]any{
		"model": e.Model,
		"input": texts,
	}

	var result struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := postJSON(ctx, e.client, e.BaseURL+"/api/embed", "", body, &result); err != nil {
		return nil, fmt.Errorf("ollama embed error: %w", err)
	}
	return result.Embeddings, nil
}

// OpenAIProvider is a provider for the OpenAI chat completions API or any
// server compatible with it.
type OpenAIProvider struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	System      string
	client      *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider. The key is read from the
// environment variable named apiKeyEnv.
func NewOpenAIProvider(model, apiKeyEnv string) *OpenAIProvider {
	return &OpenAIProvider{
		Model:       model,
		APIKey:      os.Getenv(apiKeyEnv),
		BaseURL:     DefaultOpenAIURL,
		Temperature: defaultTemperature,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

// IsConfigured reports whether the API key variable is set.
func (o *OpenAIProvider) IsConfigured() bool {
	return o.APIKey != ""
}

// Generate runs prompt through the OpenAI chat completions API.
func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if o.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}

	body := map[string]any{
		"model":       o.Model,
		"messages":    messages(o.System, prompt),
		"max_tokens":  maxTokens,
		"temperature": o.Temperature,
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := postJSON(ctx, o.client, o.BaseURL+"/chat/completions", o.APIKey, body, &result); err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return result.Choices[0].Message.Content, nil
}

// OpenAIEmbedder generates embeddings via the OpenAI embeddings API.
type OpenAIEmbedder struct {
	Model   string
	APIKey  string
	BaseURL string
	client  *http.Client
}

// NewOpenAIEmbedder creates a new OpenAI embedder.
func NewOpenAIEmbedder(model, apiKeyEnv string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		Model:   model,
		APIKey:  os.Getenv(apiKeyEnv),
		BaseURL: DefaultOpenAIURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// Embed returns one vector per text, in input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if e.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	body := map[string]any{
		"model": e.Model,
		"input": texts,
	}

	var result struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := postJSON(ctx, e.client, e.BaseURL+"/embeddings", e.APIKey, body, &result); err != nil {
		return nil, fmt.Errorf("OpenAI embed error: %w", err)
	}

	sort.Slice(result.Data, func(i, j int) bool { return result.Data[i].Index < result.Data[j].Index })
	out := make([][]float64, len(result.Data))
	for i, d := range result.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// ProviderConfig selects and tunes a provider.
type ProviderConfig struct {
	Provider    string
	Model       string
	OllamaURL   string
	OpenAIModel string
	OpenAIURL   string
	APIKeyEnv   string
	Temperature float64
	System      string
}

// CreateProvider creates an LLM provider based on configuration. Ollama is
// preferred when selected and reachable; OpenAI is the fallback. It returns
// nil when neither is usable.
func CreateProvider(cfg ProviderConfig) Provider {
	if strings.ToLower(cfg.Provider) == "ollama" {
		p := NewOllamaProvider(cfg.Model, cfg.OllamaURL)
		p.System = cfg.System
		if cfg.Temperature > 0 {
			p.Temperature = cfg.Temperature
		}
		if p.IsConfigured() {
			log.Printf("Using Ollama with model: %s", cfg.Model)
			return p
		}
		log.Println("Ollama not available, trying OpenAI fallback...")
	}

	p := NewOpenAIProvider(cfg.OpenAIModel, cfg.APIKeyEnv)
	p.System = cfg.System
	if cfg.OpenAIURL != "" {
		p.BaseURL = strings.TrimRight(cfg.OpenAIURL, "/")
	}
	if cfg.Temperature > 0 {
		p.Temperature = cfg.Temperature
	}
	if p.IsConfigured() {
		log.Printf("Using OpenAI with model: %s", cfg.OpenAIModel)
		return p
	}

	log.Printf("No LLM provider available. Check Ollama is running or set %s.", cfg.APIKeyEnv)
	return nil
}

// EmbedderConfig selects an embedding backend.
type EmbedderConfig struct {
	Provider  string
	Model     string
	OllamaURL string
	OpenAIURL string
	APIKeyEnv string
}

// CreateEmbedder creates an embedder, or nil when the backend is not
// configured.
func CreateEmbedder(cfg EmbedderConfig) Embedder {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return NewOllamaEmbedder(cfg.Model, cfg.OllamaURL)
	case "openai":
		e := NewOpenAIEmbedder(cfg.Model, cfg.APIKeyEnv)
		if cfg.OpenAIURL != "" {
			e.BaseURL = strings.TrimRight(cfg.OpenAIURL, "/")
		}
		if e.APIKey == "" {
			log.Printf("Embedding provider openai selected but %s is not set", cfg.APIKeyEnv)
			return nil
		}
		return e
	default:
		return nil
	}
}
