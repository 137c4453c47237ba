package pattern

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Linguistic flags.
const (
	FlagLongSentences   = "long_sentences"
	FlagSuperlatives    = "excessive_superlatives"
	FlagEmotional       = "emotional_manipulation"
	FlagIntensifiers    = "excessive_intensifiers"
	FlagCaps            = "excessive_caps"
	FlagPunctuation     = "excessive_punctuation"
	maxManipulation     = 0.5
	longSentenceWords   = 25
	capsRatioThreshold  = 0.1
	exclamationMaximum  = 3
	questionMarkMaximum = 5
)

// Manipulation is the linguistic manipulation analysis of a text.
type Manipulation struct {
	Score             float64  `json:"manipulation_score"`
	Flags             []string `json:"linguistic_flags"`
	Reasons           []string `json:"reasons,omitempty"`
	AvgSentenceLength float64  `json:"avg_sentence_length"`
	Superlatives      int      `json:"superlatives"`
	EmotionalWords    int      `json:"emotional_words"`
	Intensifiers      int      `json:"intensifiers"`
	CapsRatio         float64  `json:"caps_ratio"`
	Exclamations      int      `json:"exclamations"`
	Questions         int      `json:"questions"`
}

var (
	superlativeMatcher = MustMatcher(superlatives)
	emotionalMatcher   = MustMatcher(emotionalWords)
	intensifierMatcher = MustMatcher(intensifiers)
)

// AnalyzeLinguistics measures sentence length, loaded vocabulary,
// capitalisation and punctuation. The score is capped at 0.5.
func AnalyzeLinguistics(text string) Manipulation {
	lower := strings.ToLower(text)
	m := Manipulation{
		AvgSentenceLength: averageSentenceLength(text),
		Superlatives:      superlativeMatcher.Count(lower),
		EmotionalWords:    emotionalMatcher.Count(lower),
		Intensifiers:      intensifierMatcher.Count(lower),
		CapsRatio:         CapsRatio(text),
		Exclamations:      strings.Count(text, "!"),
		Questions:         strings.Count(text, "?"),
	}

	score := 0.0
	flag := func(name string, weight float64, reason string) {
		score += weight
		m.Flags = append(m.Flags, name)
		m.Reasons = append(m.Reasons, reason)
	}

	if m.AvgSentenceLength > longSentenceWords {
		flag(FlagLongSentences, 0.1, fmt.Sprintf("long sentences (avg %.0f words)", m.AvgSentenceLength))
	}
	if m.Superlatives > 2 {
		flag(FlagSuperlatives, 0.18, fmt.Sprintf("excessive superlatives (%d)", m.Superlatives))
	}
	if m.EmotionalWords > 1 {
		flag(FlagEmotional, 0.15, fmt.Sprintf("emotional manipulation (%d charged words)", m.EmotionalWords))
	}
	if m.Intensifiers > 2 {
		flag(FlagIntensifiers, 0.12, fmt.Sprintf("excessive intensifiers (%d)", m.Intensifiers))
	}
	if m.CapsRatio > capsRatioThreshold {
		flag(FlagCaps, 0.08, fmt.Sprintf("excessive capitals (%.0f%%)", m.CapsRatio*100))
	}
	if m.Exclamations > exclamationMaximum || m.Questions > questionMarkMaximum {
		flag(FlagPunctuation, 0.1, "excessive punctuation")
	}

	m.Score = math.Min(score, maxManipulation)
	return m
}

// CapsRatio returns the share of uppercase runes in text.
func CapsRatio(text string) float64 {
	total, upper := 0, 0
	for _, r := range text {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}

func averageSentenceLength(text string) float64 {
	sentences := strings.Split(text, ".")
	words := 0
	for _, s := range sentences {
		words += len(strings.Fields(s))
	}
	return float64(words) / float64(len(sentences))
}
