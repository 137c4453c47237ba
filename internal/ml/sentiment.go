package ml

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/TobiSchelling/veritas/internal/llm"
	"github.com/TobiSchelling/veritas/internal/pattern"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

// Sentiment labels.
const (
	Positive = "POSITIVE"
	Negative = "NEGATIVE"
	Neutral  = "NEUTRAL"
)

const (
	maxSentimentInput  = 512
	suspicionThreshold = 0.4
)

// Sentiment is a classifier's polarity label and its probability.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentClassifier labels the polarity of a text.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (Sentiment, error)
}

// SentimentExtractor flags texts whose tone is extreme or whose wording is
// manipulative.
type SentimentExtractor struct {
	classifier SentimentClassifier
}

// NewSentimentExtractor creates a sentiment extractor.
func NewSentimentExtractor(c SentimentClassifier) *SentimentExtractor {
	return &SentimentExtractor{classifier: c}
}

func (x *SentimentExtractor) Source() verdict.Source { return verdict.SourceSentiment }

// Extract classifies text.
func (x *SentimentExtractor) Extract(ctx context.Context, text string) verdict.Result {
	if x.classifier == nil {
		return verdict.Failed(x.Source(), ErrNotConfigured)
	}

	s, err := x.classifier.Classify(ctx, truncateRunes(text, maxSentimentInput))
	if err != nil {
		log.Printf("Sentiment extractor failed: %v", err)
		return verdict.Failed(x.Source(), fmt.Errorf("classifying sentiment: %w", err))
	}
	return classifySentiment(s, pattern.AnalyzeLinguistics(text))
}

func classifySentiment(s Sentiment, m pattern.Manipulation) verdict.Result {
	suspicion := 0.0
	var reasons []string

	polar := s.Label == Positive || s.Label == Negative
	switch {
	case polar && s.Score > 0.9:
		suspicion += 0.3
		reasons = append(reasons, fmt.Sprintf("extremely %s sentiment (score %.2f)", strings.ToLower(s.Label), s.Score))
	case polar && s.Score > 0.8:
		suspicion += 0.15
		reasons = append(reasons, fmt.Sprintf("strongly %s sentiment (score %.2f)", strings.ToLower(s.Label), s.Score))
	}

	suspicion += m.Score
	reasons = append(reasons, m.Reasons...)

	suspicious := suspicion > suspicionThreshold
	var confidence float64
	if suspicious {
		confidence = math.Min(suspicion+0.5, 0.95)
	} else {
		confidence = math.Min(1.0-suspicion, 0.9)
	}
	confidence = math.Max(confidence, 0.55)

	reasoning := strings.Join(reasons, "; ")
	if reasoning == "" {
		reasoning = fmt.Sprintf("tone is moderately %s", strings.ToLower(s.Label))
	}

	label := verdict.Real
	if suspicious {
		label = verdict.Fake
	}
	return verdict.Result{
		Source:     verdict.SourceSentiment,
		Label:      label,
		Confidence: confidence,
		Sentiment: &verdict.SentimentDetail{
			Label:        s.Label,
			Score:        s.Score,
			Manipulation: m.Score,
			Suspicion:    suspicion,
			Flags:        m.Flags,
			Reasoning:    reasoning,
		},
	}
}

// LexiconClassifier scores polarity from positive and negative word lists.
type LexiconClassifier struct {
	positive *pattern.Matcher
	negative *pattern.Matcher
}

// NewLexiconClassifier builds a classifier over the built-in lexicons.
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{
		positive: pattern.MustMatcher(positiveWords),
		negative: pattern.MustMatcher(negativeWords),
	}
}

// Classify returns NEUTRAL 0.5 when no lexicon word occurs. Otherwise the
// dominant polarity wins, with a score that grows with both the margin and
// the number of hits.
func (c *LexiconClassifier) Classify(_ context.Context, text string) (Sentiment, error) {
	lower := strings.ToLower(text)
	p := float64(c.positive.Count(lower))
	n := float64(c.negative.Count(lower))
	total := p + n
	if total == 0 || p == n {
		return Sentiment{Label: Neutral, Score: 0.5}, nil
	}

	score := 0.5 + 0.5*math.Abs(p-n)/total*math.Min(1, total/4)
	label := Positive
	if n > p {
		label = Negative
	}
	return Sentiment{Label: label, Score: score}, nil
}

var positiveWords = []string{
	"amazing", "incredible", "wonderful", "fantastic", "miraculous", "breakthrough",
	"best", "great", "excellent", "perfect", "success", "cure", "cures", "guaranteed",
	"uimitor", "incredibil", "minunat", "miraculos", "excelent",
	"succes", "vindecă", "garantat", "extraordinar",
}

var negativeWords = []string{
	"shocking", "terrifying", "devastating", "horrible", "disaster", "danger", "dangerous",
	"deadly", "crisis", "scandal", "outrageous", "collapse", "crash", "fear", "lies",
	"șocant", "terifiant", "devastator", "groaznic", "dezastru", "pericol", "periculos",
	"mortal", "criză", "minciună", "prăbușire", "frică",
}

// LLMSentimentClassifier asks a language model for the polarity label.
type LLMSentimentClassifier struct {
	provider llm.Provider
}

// NewLLMSentimentClassifier creates a model-backed classifier.
func NewLLMSentimentClassifier(p llm.Provider) *LLMSentimentClassifier {
	return &LLMSentimentClassifier{provider: p}
}

const sentimentPrompt = `Classify the sentiment of the following text. Respond with a JSON object only:
{"label": "POSITIVE" | "NEGATIVE" | "NEUTRAL", "score": <probability of the label between 0 and 1>}

Text:
%s`

// Classify sends the text to the provider and parses its JSON answer.
func (c *LLMSentimentClassifier) Classify(ctx context.Context, text string) (Sentiment, error) {
	if c.provider == nil {
		return Sentiment{}, ErrNotConfigured
	}
	resp, err := c.provider.Generate(ctx, fmt.Sprintf(sentimentPrompt, text), 50)
	if err != nil {
		return Sentiment{}, err
	}

	data := llm.ParseJSONResponse(resp)
	if data == nil {
		return Sentiment{}, fmt.Errorf("unparsable sentiment response")
	}
	label, _ := data["label"].(string)
	score, _ := data["score"].(float64)
	label = strings.ToUpper(strings.TrimSpace(label))
	switch label {
	case Positive, Negative, Neutral:
	default:
		return Sentiment{}, fmt.Errorf("unexpected sentiment label %q", label)
	}
	return Sentiment{Label: label, Score: verdict.Clamp(score, 0, 1)}, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
