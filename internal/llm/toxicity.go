package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ToxicityScorer rates text with a content moderation service. Scores are
// keyed by lowercased attribute name, e.g. "toxicity".
type ToxicityScorer interface {
	Score(ctx context.Context, text string) (map[string]float64, error)
	IsConfigured() bool
}

// DefaultPerspectiveURL is the Perspective comment analyzer endpoint.
const DefaultPerspectiveURL = "https://commentanalyzer.googleapis.com/v1alpha1/comments:analyze"

const maxPerspectiveInput = 3000

// PerspectiveClient calls the Google Perspective API.
type PerspectiveClient struct {
	APIKey     string
	Endpoint   string
	Attributes []string
	client     *http.Client
}

// NewPerspectiveClient creates a client reading its key from apiKeyEnv.
func NewPerspectiveClient(apiKeyEnv string) *PerspectiveClient {
	return &PerspectiveClient{
		APIKey:     os.Getenv(apiKeyEnv),
		Endpoint:   DefaultPerspectiveURL,
		Attributes: []string{"TOXICITY"},
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (p *PerspectiveClient) IsConfigured() bool {
	return p.APIKey != ""
}

// Score requests the configured attributes for text.
func (p *PerspectiveClient) Score(ctx context.Context, text string) (map[string]float64, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("Perspective API key not configured")
	}

	if r := []rune(text); len(r) > maxPerspectiveInput {
		text = string(r[:maxPerspectiveInput])
	}

	requested := make(map[string]struct{}, len(p.Attributes))
	for _, a := range p.Attributes {
		requested[strings.ToUpper(a)] = struct{}{}
	}
	body := map[string]any{
		"requestedAttributes": requested,
		"comment":             map[string]string{"text": text},
		"doNotStore":          true,
	}

	var result struct {
		AttributeScores map[string]struct {
			SummaryScore struct {
				Value float64 `json:"value"`
			} `json:"summaryScore"`
		} `json:"attributeScores"`
	}
	endpoint := p.Endpoint + "?key=" + url.QueryEscape(p.APIKey)
	if err := postJSON(ctx, p.client, endpoint, "", body, &result); err != nil {
		return nil, fmt.Errorf("Perspective API error: %w", err)
	}
	if len(result.AttributeScores) == 0 {
		return nil, fmt.Errorf("unexpected Perspective API response: no attribute scores")
	}

	scores := make(map[string]float64, len(result.AttributeScores))
	for attr, s := range result.AttributeScores {
		scores[strings.ToLower(attr)] = s.SummaryScore.Value
	}
	return scores, nil
}
