package ml

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/TobiSchelling/veritas/internal/pattern"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

//go:embed keywords.json
var defaultKeywords []byte

// KeywordSet is the on-disk form of a keyword model.
type KeywordSet struct {
	Name                  string   `json:"name"`
	FakeKeywords          []string `json:"fake_keywords"`
	RealKeywords          []string `json:"real_keywords"`
	SubtlePatterns        []string `json:"subtle_patterns"`
	DubiousSources        []string `json:"dubious_sources"`
	ArtificialUrgency     []string `json:"artificial_urgency"`
	ConspiracyIndicators  []string `json:"conspiracy_indicators"`
	CredibilityIndicators []string `json:"credibility_indicators"`
	EmotionalWords        []string `json:"emotional_words"`
	AcademicWords         []string `json:"academic_words"`
	SensationalWords      []string `json:"sensational_words"`
}

// Per-match weights.
const (
	subtleWeight      = 2.0
	dubiousWeight     = 3.0
	urgencyWeight     = 1.5
	conspiracyWeight  = 2.5
	credibilityWeight = 1.5
	longKeywordRunes  = 10
)

// KeywordModel is the traditional bag-of-words classifier: weighted keyword
// and phrase counts on each side, with heuristics to break ties.
type KeywordModel struct {
	name        string
	size        int
	fake        *pattern.Matcher
	real        *pattern.Matcher
	subtle      *pattern.Matcher
	dubious     *pattern.Matcher
	urgency     *pattern.Matcher
	conspiracy  *pattern.Matcher
	credibility *pattern.Matcher
	emotional   *pattern.Matcher
	academic    *pattern.Matcher
	sensational *pattern.Matcher
}

// LoadKeywordModel reads a keyword model from path, or the built-in model
// when path is empty.
func LoadKeywordModel(path string) (*KeywordModel, error) {
	data := defaultKeywords
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading keyword model: %w", err)
		}
	}

	var set KeywordSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing keyword model: %w", err)
	}
	return NewKeywordModel(set)
}

// NewKeywordModel compiles a keyword set.
func NewKeywordModel(set KeywordSet) (*KeywordModel, error) {
	if len(set.FakeKeywords) == 0 || len(set.RealKeywords) == 0 {
		return nil, fmt.Errorf("keyword model %q needs fake and real keywords", set.Name)
	}

	m := &KeywordModel{name: set.Name}
	lists := []struct {
		dst     **pattern.Matcher
		phrases []string
	}{
		{&m.fake, set.FakeKeywords},
		{&m.real, set.RealKeywords},
		{&m.subtle, set.SubtlePatterns},
		{&m.dubious, set.DubiousSources},
		{&m.urgency, set.ArtificialUrgency},
		{&m.conspiracy, set.ConspiracyIndicators},
		{&m.credibility, set.CredibilityIndicators},
		{&m.emotional, set.EmotionalWords},
		{&m.academic, set.AcademicWords},
		{&m.sensational, set.SensationalWords},
	}
	for _, l := range lists {
		matcher, err := pattern.NewMatcher(l.phrases)
		if err != nil {
			return nil, fmt.Errorf("compiling keyword model %q: %w", set.Name, err)
		}
		*l.dst = matcher
		m.size += matcher.Len()
	}
	return m, nil
}

func (m *KeywordModel) Source() verdict.Source { return verdict.SourceBoW }

// Name returns the model name.
func (m *KeywordModel) Name() string { return m.name }

// Size returns the number of distinct phrases in the model.
func (m *KeywordModel) Size() int { return m.size }

// Prediction is a keyword model decision with its raw evidence.
type Prediction struct {
	Fake         bool
	Confidence   float64
	FakeScore    float64
	RealScore    float64
	Manipulation float64
}

// Predict classifies text.
func (m *KeywordModel) Predict(text string) Prediction {
	lower := strings.ToLower(text)

	keywordWeight := func(k string) float64 {
		if utf8.RuneCountInString(k) > longKeywordRunes {
			return 2
		}
		return 1
	}
	constant := func(w float64) func(string) float64 {
		return func(string) float64 { return w }
	}

	fakeScore := m.fake.Sum(lower, keywordWeight)
	realScore := m.real.Sum(lower, keywordWeight)

	subtle := m.subtle.Sum(lower, constant(subtleWeight))
	dubious := m.dubious.Sum(lower, constant(dubiousWeight))
	urgency := m.urgency.Sum(lower, constant(urgencyWeight))
	conspiracy := m.conspiracy.Sum(lower, constant(conspiracyWeight))
	fakeScore += subtle + dubious + urgency + conspiracy

	credibility := m.credibility.Sum(lower, constant(credibilityWeight))
	realScore += credibility

	manipulation := 0.0
	if pattern.CapsRatio(text) > 0.1 {
		manipulation += 2
	}
	if strings.Count(text, "!") > 3 {
		manipulation += 1.5
	}
	if n := m.emotional.Count(lower); n > 2 {
		manipulation += float64(n)
	}
	fakeScore += manipulation

	p := Prediction{FakeScore: fakeScore, RealScore: realScore, Manipulation: manipulation}
	total := math.Max(fakeScore+realScore, 1)

	switch {
	case fakeScore > realScore:
		conf := math.Min(0.5+(fakeScore-realScore)/total*0.4, 0.95)
		if subtle > 0 && dubious > 0 {
			conf += 0.05
		}
		if conspiracy > 0 && manipulation > 0 {
			conf += 0.05
		}
		p.Fake, p.Confidence = true, verdict.Clamp(conf, 0.65, 0.95)
	case realScore > fakeScore:
		conf := math.Min(0.5+(realScore-fakeScore)/total*0.4, 0.95)
		if credibility > 3 {
			conf += 0.05
		}
		p.Fake, p.Confidence = false, verdict.Clamp(conf, 0.65, 0.95)
	case manipulation > 2:
		p.Fake, p.Confidence = true, 0.70
	case credibility > 0:
		p.Fake, p.Confidence = false, 0.75
	case utf8.RuneCountInString(text) > 200 && m.academic.Contains(lower):
		p.Fake, p.Confidence = false, 0.70
	case m.sensational.Contains(lower):
		p.Fake, p.Confidence = true, 0.68
	default:
		p.Fake, p.Confidence = false, 0.65
	}
	return p
}

// Extract classifies text.
func (m *KeywordModel) Extract(_ context.Context, text string) verdict.Result {
	p := m.Predict(text)
	r := verdict.Result{
		Source:     verdict.SourceBoW,
		Label:      verdict.Real,
		Confidence: p.Confidence,
		BoW: &verdict.BoWDetail{
			FakeScore:       p.FakeScore,
			RealScore:       p.RealScore,
			FakeProbability: 1 - p.Confidence,
			RealProbability: p.Confidence,
			ModelSize:       m.size,
		},
	}
	if p.Fake {
		r.Label = verdict.Fake
		r.BoW.FakeProbability, r.BoW.RealProbability = p.Confidence, 1-p.Confidence
	}
	return r
}
