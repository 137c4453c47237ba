package verdict

import (
	"context"

	"github.com/TobiSchelling/veritas/internal/pattern"
)

// Result is the output of a single extractor. Exactly one of the detail
// pointers matching Source is set when Error is empty.
type Result struct {
	Source     Source  `json:"source"`
	Label      Label   `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
	Language   string  `json:"detected_language,omitempty"`

	Embedding *EmbeddingDetail `json:"embedding,omitempty"`
	Sentiment *SentimentDetail `json:"sentiment,omitempty"`
	BoW       *BoWDetail       `json:"bow,omitempty"`
	LLM       *LLMDetail       `json:"llm,omitempty"`
	Toxicity  *ToxicityDetail  `json:"toxicity,omitempty"`
}

// Failed builds an error-bearing result. Combiners ignore it entirely.
func Failed(src Source, err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{Source: src, Label: Unknown, Error: msg}
}

// OK reports whether the result may contribute to a combiner.
func (r Result) OK() bool {
	return r.Error == ""
}

// IsFake reports whether the result votes fake.
func (r Result) IsFake() bool {
	return r.Label == Fake
}

// EmbeddingDetail holds the similarity evidence behind an embedding verdict.
type EmbeddingDetail struct {
	FakeSimilarity  float64       `json:"fake_similarity"`
	RealSimilarity  float64       `json:"real_similarity"`
	AdjustedFake    float64       `json:"adjusted_fake_score"`
	AdjustedReal    float64       `json:"adjusted_real_score"`
	MostSimilarFake string        `json:"most_similar_fake"`
	MostSimilarReal string        `json:"most_similar_real"`
	Patterns        pattern.Score `json:"subtle_indicators"`
}

// SentimentDetail holds the sentiment label and linguistic manipulation
// analysis behind a sentiment verdict.
type SentimentDetail struct {
	Label        string   `json:"sentiment_label"`
	Score        float64  `json:"sentiment_score"`
	Manipulation float64  `json:"manipulation_score"`
	Suspicion    float64  `json:"suspicion"`
	Flags        []string `json:"linguistic_flags,omitempty"`
	Reasoning    string   `json:"reasoning"`
}

// BoWDetail holds the keyword model's raw scores.
type BoWDetail struct {
	FakeScore       float64 `json:"fake_score"`
	RealScore       float64 `json:"real_score"`
	FakeProbability float64 `json:"fake_probability"`
	RealProbability float64 `json:"real_probability"`
	ModelSize       int     `json:"model_size,omitempty"`
}

// LLMDetail holds the remote language model's structured answer.
type LLMDetail struct {
	Reasoning        string   `json:"reasoning"`
	RedFlags         []string `json:"red_flags,omitempty"`
	KeyIndicators    []string `json:"key_indicators,omitempty"`
	CredibilityScore float64  `json:"credibility_score"`
	Fallback         bool     `json:"fallback,omitempty"`
}

// ToxicityDetail holds the moderation API scores.
type ToxicityDetail struct {
	Toxicity      float64            `json:"toxicity_score"`
	FakeSuspicion float64            `json:"fake_suspicion_score"`
	IsToxic       bool               `json:"is_toxic"`
	IsSuspicious  bool               `json:"is_suspicious"`
	Scores        map[string]float64 `json:"toxicity_scores,omitempty"`
}

// Extractor produces one opinion about a text. Implementations never
// return an error: failures are reported as an error-bearing Result.
type Extractor interface {
	Source() Source
	Extract(ctx context.Context, text string) Result
}
