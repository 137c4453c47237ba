// Package hybrid fuses the AI and ML family verdicts into the final answer,
// and owns the analysis modes, system status and aggregate statistics.
package hybrid

import (
	"fmt"
	"math"

	"github.com/TobiSchelling/veritas/internal/ml"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

// CombinedSource labels verdicts produced by Combine.
const CombinedSource = "hybrid"

const (
	agreementBonus           = 0.15
	strongAgreementBonus     = 0.1
	strongAgreementThreshold = 0.7
	disagreementPenalty      = 0.1
	highConfidenceBonus      = 0.05
	highConfidenceThreshold  = 0.8
	minConfidence            = 0.5
	maxConfidence            = 0.95
	maxAIExplanation         = 200
)

// Weights are the family weights of the signed score.
type Weights struct {
	AI float64 `yaml:"ai" json:"ai" validate:"gte=0,lte=1"`
	ML float64 `yaml:"ml" json:"ml" validate:"gte=0,lte=1"`
}

// DefaultWeights gives both families the same say.
func DefaultWeights() Weights {
	return Weights{AI: 0.5, ML: 0.5}
}

// Combine fuses the two family verdicts. A family whose verdict is not
// valid is treated as absent and the other family decides alone, without
// agreement bonus or penalty.
func Combine(aiV, mlV verdict.Verdict, w Weights) verdict.Verdict {
	aiOK, mlOK := aiV.Valid(), mlV.Valid()

	var out verdict.Verdict
	switch {
	case aiOK && mlOK:
		out = combineBoth(aiV, mlV, w)
	case aiOK:
		out = single(aiV)
	case mlOK:
		out = single(mlV)
	default:
		out = verdict.NewUnknown(CombinedSource, verdict.NoValidAnalyses)
		out.AI, out.ML = &aiV, &mlV
		return out
	}

	out.Source = CombinedSource
	out.IndividualVerdicts = map[string]verdict.Label{"ai": aiV.Label, "ml": mlV.Label}
	out.IndividualConfidences = map[string]float64{"ai": aiV.Confidence, "ml": mlV.Confidence}
	out.Language = pickLanguage(aiV, mlV)
	out.Reasons = explain(aiV, mlV, out)
	out.Explanation = verdict.Render(out.Reasons, " | ")
	out.AI, out.ML = &aiV, &mlV
	return out
}

func combineBoth(aiV, mlV verdict.Verdict, w Weights) verdict.Verdict {
	score := w.AI*signed(aiV) + w.ML*signed(mlV)
	agreement := aiV.Label == mlV.Label

	conf := math.Min(math.Abs(score), 1.0)
	if agreement {
		conf += agreementBonus
		if aiV.Confidence > strongAgreementThreshold && mlV.Confidence > strongAgreementThreshold {
			conf += strongAgreementBonus
		}
	} else {
		conf -= disagreementPenalty
	}
	if math.Max(aiV.Confidence, mlV.Confidence) > highConfidenceThreshold {
		conf += highConfidenceBonus
	}
	conf = verdict.Clamp(conf, minConfidence, maxConfidence)

	consensus := ConsensusStrength((aiV.Confidence + mlV.Confidence) / 2)
	return verdict.Verdict{
		Label:         labelFor(score),
		Confidence:    conf,
		EnsembleScore: score,
		Agreement:     agreement,
		Consensus:     consensus,
		RiskLevel:     AssessRisk(conf, agreement, consensus),
	}
}

func single(v verdict.Verdict) verdict.Verdict {
	score := signed(v)
	conf := math.Min(math.Abs(score), 1.0)
	if v.Confidence > highConfidenceThreshold {
		conf += highConfidenceBonus
	}
	conf = verdict.Clamp(conf, minConfidence, maxConfidence)

	consensus := ConsensusStrength(v.Confidence)
	return verdict.Verdict{
		Label:         labelFor(score),
		Confidence:    conf,
		EnsembleScore: score,
		Consensus:     consensus,
		RiskLevel:     AssessRisk(conf, false, consensus),
	}
}

// signed returns the family's fake-confidence, negated for a real verdict.
func signed(v verdict.Verdict) float64 {
	if v.Label == verdict.Fake {
		return v.Confidence
	}
	return -v.Confidence
}

func labelFor(score float64) verdict.Label {
	if score > 0 {
		return verdict.Fake
	}
	return verdict.Real
}

// ConsensusStrength bands the mean family confidence.
func ConsensusStrength(mean float64) verdict.Consensus {
	switch {
	case mean >= 0.8:
		return verdict.ConsensusStrong
	case mean >= 0.6:
		return verdict.ConsensusModerate
	case mean >= 0.4:
		return verdict.ConsensusWeak
	default:
		return verdict.ConsensusVeryWeak
	}
}

// AssessRisk applies the risk decision table; the first matching row wins.
func AssessRisk(conf float64, agreement bool, c verdict.Consensus) verdict.RiskLevel {
	switch {
	case conf >= 0.8 && agreement && (c == verdict.ConsensusStrong || c == verdict.ConsensusModerate):
		return verdict.RiskLow
	case conf >= 0.6 && (agreement || c != verdict.ConsensusVeryWeak):
		return verdict.RiskMedium
	case conf >= 0.4:
		return verdict.RiskHigh
	default:
		return verdict.RiskVeryHigh
	}
}

// Finalize stamps consensus and risk on a verdict that did not go through
// Combine, as in the single-family modes. A lone family has no
// corroboration, so it is assessed without agreement.
func Finalize(v verdict.Verdict) verdict.Verdict {
	if !v.Valid() {
		return v
	}
	v.Consensus = ConsensusStrength(v.Confidence)
	v.RiskLevel = AssessRisk(v.Confidence, false, v.Consensus)
	return v
}

func pickLanguage(aiV, mlV verdict.Verdict) string {
	for _, lang := range []string{mlV.Language, aiV.Language} {
		if lang != "" && lang != "unknown" {
			return lang
		}
	}
	return "unknown"
}

func explain(aiV, mlV, out verdict.Verdict) []verdict.Reason {
	var reasons []verdict.Reason
	switch {
	case aiV.Valid() && mlV.Valid() && out.Agreement:
		reasons = append(reasons, verdict.Reason{Category: "Agreement", Detail: fmt.Sprintf("AI and ML systems agree the article looks %s", out.Label)})
	case aiV.Valid() && mlV.Valid():
		reasons = append(reasons, verdict.Reason{Category: "Disagreement", Detail: fmt.Sprintf("AI says %q, ML says %q", aiV.Label, mlV.Label)})
	case aiV.Valid():
		reasons = append(reasons, verdict.Reason{Category: "Single family", Detail: "only the AI analysis was available"})
	default:
		reasons = append(reasons, verdict.Reason{Category: "Single family", Detail: "only the ML analysis was available"})
	}

	if aiV.Valid() && aiV.Explanation != "" {
		reasons = append(reasons, verdict.Reason{Category: "AI", Detail: cut(aiV.Explanation, maxAIExplanation)})
	}
	if mlV.Valid() && mlV.Explanation != "" {
		reasons = append(reasons, verdict.Reason{Category: "ML", Detail: mlV.Explanation})
	}
	if out.Language != "unknown" {
		reasons = append(reasons, verdict.Reason{Category: "Detected language", Detail: ml.LanguageName(out.Language)})
	}
	return reasons
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
