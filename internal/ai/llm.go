package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/TobiSchelling/veritas/internal/llm"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

const (
	maxPromptInput   = 2000
	maxLLMTokens     = 1000
	fallbackConf     = 0.7
	defaultLLMConf   = 0.5
	defaultCredScore = 0.5
)

// Temperature is the sampling temperature the remote model should use.
const Temperature = 0.05

// SystemPrompt pins the response language to the input language.
const SystemPrompt = "You are a fake news detection expert. CRITICAL RULE: Always respond in the exact same language as the input text. Detect the input language carefully and match it exactly in your response."

const analysisPrompt = `You are an expert in fake news detection and media analysis.

STEP 1 - LANGUAGE DETECTION:
Analyze this text and identify its language:
"%s"

STEP 2 - RESPONSE LANGUAGE RULE:
You MUST respond in the EXACT SAME LANGUAGE as the input text.

STEP 3 - ANALYZE THE TEXT FOR FAKE NEWS INDICATORS:
1. Superlative or sensational language: "BREAKING", "SHOCKING", "WORLD FIRST", "UNPRECEDENTED", "REVOLUTIONARY"
2. Unrealistic claims: impossible statistics, too-perfect numbers, extraordinary achievements
3. Impossible timelines for massive changes
4. Vague sources: "officials say", "experts confirm" without naming people or organizations
5. Extraordinary claims: technologies that do not exist, astronomical budgets, impossible logistics
6. Emotional manipulation designed to shock, anger or create urgency
7. Lack of verification: no links to official documents, no credible institution names

STEP 4 - DETERMINE VERDICT:
Based on the presence of these indicators, determine if this is fake news.

MANDATORY JSON RESPONSE FORMAT:
{
    "is_fake": true/false,
    "confidence": 0.0-1.0,
    "reasoning": "in the same language as the input text, explain which indicators were found",
    "detected_language": "language code (en, ro, it, es, fr, etc.)",
    "red_flags": ["indicators found, in the same language as the input"],
    "credibility_score": 0.0-1.0,
    "key_indicators": ["problematic elements found, in the same language as the input"]
}

CRITICAL: Match the language of your response exactly to the language of the input text.`

// LLMExtractor asks a remote language model for a structured verdict.
type LLMExtractor struct {
	provider llm.Provider
}

// NewLLMExtractor creates an extractor over p.
func NewLLMExtractor(p llm.Provider) *LLMExtractor {
	return &LLMExtractor{provider: p}
}

func (x *LLMExtractor) Source() verdict.Source { return verdict.SourceLLM }

type llmAnswer struct {
	IsFake           bool     `json:"is_fake"`
	Confidence       *float64 `json:"confidence"`
	Reasoning        string   `json:"reasoning"`
	DetectedLanguage string   `json:"detected_language"`
	RedFlags         []string `json:"red_flags"`
	CredibilityScore *float64 `json:"credibility_score"`
	KeyIndicators    []string `json:"key_indicators"`
}

// Extract sends the text, truncated, to the model.
func (x *LLMExtractor) Extract(ctx context.Context, text string) verdict.Result {
	if x.provider == nil {
		return verdict.Failed(x.Source(), ErrNotConfigured)
	}

	prompt := fmt.Sprintf(analysisPrompt, truncateRunes(text, maxPromptInput))
	content, err := x.provider.Generate(ctx, prompt, maxLLMTokens)
	if err != nil {
		log.Printf("Remote LLM extractor failed: %v", err)
		return verdict.Failed(x.Source(), fmt.Errorf("generating analysis: %w", err))
	}
	return parseAnswer(content)
}

// parseAnswer decodes the model output. Unparsable output is read as fake
// when it mentions "fake" (or the Romanian "fals").
func parseAnswer(content string) verdict.Result {
	var ans llmAnswer
	if err := llm.DecodeJSONResponse(content, &ans); err != nil {
		lower := strings.ToLower(content)
		label := verdict.Real
		if strings.Contains(lower, "fake") || strings.Contains(lower, "fals") {
			label = verdict.Fake
		}
		return verdict.Result{
			Source:     verdict.SourceLLM,
			Label:      label,
			Confidence: fallbackConf,
			Language:   "unknown",
			LLM: &verdict.LLMDetail{
				Reasoning:        content,
				CredibilityScore: defaultCredScore,
				Fallback:         true,
			},
		}
	}

	conf := defaultLLMConf
	if ans.Confidence != nil {
		conf = verdict.Clamp(*ans.Confidence, 0, 1)
	}
	cred := defaultCredScore
	if ans.CredibilityScore != nil {
		cred = verdict.Clamp(*ans.CredibilityScore, 0, 1)
	}
	lang := strings.ToLower(strings.TrimSpace(ans.DetectedLanguage))
	if lang == "" {
		lang = "unknown"
	}

	label := verdict.Real
	if ans.IsFake {
		label = verdict.Fake
	}
	return verdict.Result{
		Source:     verdict.SourceLLM,
		Label:      label,
		Confidence: conf,
		Language:   lang,
		LLM: &verdict.LLMDetail{
			Reasoning:        ans.Reasoning,
			RedFlags:         ans.RedFlags,
			KeyIndicators:    ans.KeyIndicators,
			CredibilityScore: cred,
		},
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
