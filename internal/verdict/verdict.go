package verdict

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies the extractor that produced a Result.
type Source string

const (
	SourceLLM         Source = "remote-llm"
	SourceToxicity    Source = "toxicity-api"
	SourceEmbedding   Source = "embedding-similarity"
	SourceSentiment   Source = "transformer-sentiment"
	SourceBoW         Source = "traditional-bow"
	SourceCompression Source = "compression"
	SourceTemporal    Source = "temporal"
	SourceFace        Source = "face"
)

// Label is a verdict value. Text analyses use fake/real/unknown, video
// analyses use authentic/deepfake/inconclusive.
type Label string

const (
	Fake         Label = "fake"
	Real         Label = "real"
	Unknown      Label = "unknown"
	Authentic    Label = "authentic"
	Deepfake     Label = "deepfake"
	Inconclusive Label = "inconclusive"
)

// RiskLevel is the user-facing severity of a verdict.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// Consensus describes how strong the average family confidence was.
type Consensus string

const (
	ConsensusStrong   Consensus = "strong"
	ConsensusModerate Consensus = "moderate"
	ConsensusWeak     Consensus = "weak"
	ConsensusVeryWeak Consensus = "very_weak"
)

// NoValidAnalyses is the explanation attached to a verdict whose
// extractors all failed.
const NoValidAnalyses = "no valid analyses were available"

// Reason is one line of a structured explanation.
type Reason struct {
	Category string `json:"category"`
	Detail   string `json:"detail"`
}

// Render joins reasons into a single human-readable string.
func Render(reasons []Reason, sep string) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if r.Detail == "" {
			continue
		}
		if r.Category == "" {
			parts = append(parts, r.Detail)
			continue
		}
		parts = append(parts, r.Category+": "+r.Detail)
	}
	return strings.Join(parts, sep)
}

// Verdict is the fused output of a combiner, either for one family or for
// the whole analysis.
type Verdict struct {
	Label                 Label              `json:"verdict"`
	Confidence            float64            `json:"confidence"`
	RiskLevel             RiskLevel          `json:"risk_level,omitempty"`
	Consensus             Consensus          `json:"consensus_strength,omitempty"`
	Reasons               []Reason           `json:"reasons,omitempty"`
	Explanation           string             `json:"explanation"`
	EnsembleScore         float64            `json:"ensemble_score,omitempty"`
	Agreement             bool               `json:"ai_ml_agreement,omitempty"`
	IndividualVerdicts    map[string]Label   `json:"individual_verdicts,omitempty"`
	IndividualConfidences map[string]float64 `json:"individual_confidences,omitempty"`
	FakeVotes             float64            `json:"fake_votes,omitempty"`
	RealVotes             float64            `json:"real_votes,omitempty"`
	Language              string             `json:"detected_language"`
	Source                string             `json:"source,omitempty"`
	Mode                  string             `json:"analysis_mode,omitempty"`
	ProcessingTime        float64            `json:"processing_time"`
	Timestamp             time.Time          `json:"timestamp"`

	AI      *Verdict `json:"ai_analysis,omitempty"`
	ML      *Verdict `json:"ml_analysis,omitempty"`
	Members []Result `json:"members,omitempty"`
}

// Valid reports whether the verdict carries an opinion.
func (v Verdict) Valid() bool {
	return v.Label != Unknown && v.Label != ""
}

// NewUnknown returns the degraded verdict used when no analysis produced a
// usable opinion.
func NewUnknown(source, reason string) Verdict {
	return Verdict{
		Label:       Unknown,
		Confidence:  0,
		Reasons:     []Reason{{Detail: reason}},
		Explanation: reason,
		Language:    "unknown",
		Source:      source,
		Timestamp:   time.Now(),
	}
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// FromResult promotes a single extractor result to a verdict.
func FromResult(r Result) Verdict {
	if !r.OK() {
		v := NewUnknown(string(r.Source), NoValidAnalyses)
		v.Members = []Result{r}
		return v
	}
	v := Verdict{
		Label:                 r.Label,
		Confidence:            r.Confidence,
		Source:                string(r.Source),
		Language:              r.Language,
		IndividualVerdicts:    map[string]Label{string(r.Source): r.Label},
		IndividualConfidences: map[string]float64{string(r.Source): r.Confidence},
		Members:               []Result{r},
		Timestamp:             time.Now(),
	}
	if r.BoW != nil {
		v.Reasons = []Reason{{Category: "Traditional model", Detail: fmt.Sprintf("fake score %.1f vs real score %.1f", r.BoW.FakeScore, r.BoW.RealScore)}}
	}
	v.Explanation = Render(v.Reasons, "; ")
	return v
}
