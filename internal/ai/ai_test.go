package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

type mockProvider struct {
	response string
	err      error
	prompt   string
}

func (m *mockProvider) Generate(_ context.Context, prompt string, _ int) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func (m *mockProvider) IsConfigured() bool { return true }

type mockScorer struct {
	scores map[string]float64
	err    error
}

func (m *mockScorer) Score(_ context.Context, _ string) (map[string]float64, error) {
	return m.scores, m.err
}

func (m *mockScorer) IsConfigured() bool { return true }

func TestLLMExtractorParsesJSON(t *testing.T) {
	p := &mockProvider{response: "```json\n" + `{
		"is_fake": true,
		"confidence": 0.85,
		"reasoning": "vague sources and impossible timeline",
		"detected_language": "EN",
		"red_flags": ["vague sources"],
		"credibility_score": 0.2,
		"key_indicators": ["world first"]
	}` + "\n```"}
	r := NewLLMExtractor(p).Extract(context.Background(), "Officials say the world-first program starts tomorrow.")

	require.True(t, r.OK(), r.Error)
	assert.Equal(t, verdict.Fake, r.Label)
	assert.InDelta(t, 0.85, r.Confidence, 1e-9)
	assert.Equal(t, "en", r.Language)
	require.NotNil(t, r.LLM)
	assert.Equal(t, []string{"vague sources"}, r.LLM.RedFlags)
	assert.InDelta(t, 0.2, r.LLM.CredibilityScore, 1e-9)
	assert.False(t, r.LLM.Fallback)
}

func TestLLMExtractorFallback(t *testing.T) {
	r := NewLLMExtractor(&mockProvider{response: "This looks like fake news to me."}).Extract(context.Background(), "x")
	require.True(t, r.OK())
	assert.Equal(t, verdict.Fake, r.Label)
	assert.InDelta(t, 0.7, r.Confidence, 1e-9)
	assert.Equal(t, "unknown", r.Language)
	assert.True(t, r.LLM.Fallback)
	assert.InDelta(t, 0.5, r.LLM.CredibilityScore, 1e-9)

	r = NewLLMExtractor(&mockProvider{response: "Articolul pare autentic."}).Extract(context.Background(), "x")
	assert.Equal(t, verdict.Real, r.Label)
}

func TestLLMExtractorTruncatesInput(t *testing.T) {
	p := &mockProvider{response: `{"is_fake": false, "confidence": 0.6}`}
	long := strings.Repeat("ă", 5000)
	NewLLMExtractor(p).Extract(context.Background(), long)

	assert.Contains(t, p.prompt, strings.Repeat("ă", 2000))
	assert.NotContains(t, p.prompt, strings.Repeat("ă", 2001))
}

func TestLLMExtractorErrors(t *testing.T) {
	r := NewLLMExtractor(&mockProvider{err: errors.New("timeout")}).Extract(context.Background(), "x")
	assert.False(t, r.OK())
	assert.Equal(t, verdict.Unknown, r.Label)

	r = NewLLMExtractor(nil).Extract(context.Background(), "x")
	assert.Contains(t, r.Error, "not configured")
}

func TestToxicityExtractor(t *testing.T) {
	x := NewToxicityExtractor(&mockScorer{scores: map[string]float64{"toxicity": 0.8}}, 0)
	r := x.Extract(context.Background(), "x")

	require.True(t, r.OK())
	require.NotNil(t, r.Toxicity)
	assert.InDelta(t, 0.56, r.Toxicity.FakeSuspicion, 1e-9)
	assert.True(t, r.Toxicity.IsToxic)
	assert.True(t, r.Toxicity.IsSuspicious)
	assert.Equal(t, verdict.Fake, r.Label)

	r = NewToxicityExtractor(&mockScorer{scores: map[string]float64{"toxicity": 0.4}}, 0).Extract(context.Background(), "x")
	assert.False(t, r.Toxicity.IsToxic)
	assert.False(t, r.Toxicity.IsSuspicious)

	r = NewToxicityExtractor(&mockScorer{err: errors.New("403")}, 0).Extract(context.Background(), "x")
	assert.False(t, r.OK())
}

func llmResult(label verdict.Label, conf float64, lang string) verdict.Result {
	return verdict.Result{
		Source: verdict.SourceLLM, Label: label, Confidence: conf, Language: lang,
		LLM: &verdict.LLMDetail{Reasoning: "because"},
	}
}

func toxResult(toxic bool) verdict.Result {
	return verdict.Result{Source: verdict.SourceToxicity, Label: verdict.Real, Toxicity: &verdict.ToxicityDetail{IsToxic: toxic}}
}

func TestCombine(t *testing.T) {
	t.Run("all failed", func(t *testing.T) {
		v := Combine([]verdict.Result{verdict.Failed(verdict.SourceLLM, errors.New("down"))})
		assert.Equal(t, verdict.Unknown, v.Label)
		assert.Zero(t, v.Confidence)
		assert.Equal(t, verdict.NoValidAnalyses, v.Explanation)
	})

	t.Run("llm fake plus toxic", func(t *testing.T) {
		v := Combine([]verdict.Result{llmResult(verdict.Fake, 0.8, "ro"), toxResult(true)})
		assert.Equal(t, verdict.Fake, v.Label)
		assert.InDelta(t, 0.95, v.Confidence, 1e-9)
		assert.Equal(t, "ro", v.Language)
		assert.Equal(t, "Remote LLM: because\nToxicity: toxic content", v.Explanation)
	})

	t.Run("toxicity cannot flip a confident real", func(t *testing.T) {
		v := Combine([]verdict.Result{llmResult(verdict.Real, 0.9, "en"), toxResult(true)})
		assert.Equal(t, verdict.Real, v.Label)
		assert.InDelta(t, 0.6, v.Confidence, 1e-9)
	})

	t.Run("tie is real and lifted to the floor", func(t *testing.T) {
		v := Combine([]verdict.Result{llmResult(verdict.Real, 0.3, "en"), toxResult(true)})
		assert.Equal(t, verdict.Real, v.Label)
		assert.InDelta(t, 0.5, v.Confidence, 1e-9)
	})

	t.Run("failed llm, toxicity only", func(t *testing.T) {
		v := Combine([]verdict.Result{verdict.Failed(verdict.SourceLLM, errors.New("down")), toxResult(false)})
		assert.Equal(t, verdict.Real, v.Label)
		assert.InDelta(t, 0.5, v.Confidence, 1e-9)
		assert.Equal(t, "unknown", v.Language)
		assert.NotContains(t, v.IndividualVerdicts, string(verdict.SourceLLM))
	})
}

func TestAnalyzer(t *testing.T) {
	a := NewAnalyzer(
		NewLLMExtractor(&mockProvider{response: `{"is_fake": false, "confidence": 0.9, "reasoning": "named sources", "detected_language": "en"}`}),
		NewToxicityExtractor(&mockScorer{scores: map[string]float64{"toxicity": 0.1}}, 0.6),
		nil,
	)
	assert.Equal(t, []verdict.Source{verdict.SourceLLM, verdict.SourceToxicity}, a.Sources())

	v := a.Analyze(context.Background(), "The ministry published the figures.")
	assert.Equal(t, verdict.Real, v.Label)
	assert.InDelta(t, 0.9, v.Confidence, 1e-9)
	assert.Len(t, v.Members, 2)
}
