// Package ai is the remote-service family: a hosted language model's
// structured verdict plus a moderation API's toxicity score.
package ai

import (
	"context"
	"errors"
	"math"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

// ErrNotConfigured is returned when a remote service has no credentials.
var ErrNotConfigured = errors.New("service not configured")

// CombinedSource labels verdicts produced by Combine.
const CombinedSource = "ai_combined"

// toxicVote is added to the fake side when content is toxic.
const toxicVote = 0.3

// Combine fuses the AI family's results: the model's confidence votes for
// its label, toxicity adds to the fake side, and the sign decides.
func Combine(results []verdict.Result) verdict.Verdict {
	var valid []verdict.Result
	for _, r := range results {
		if r.OK() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		v := verdict.NewUnknown(CombinedSource, verdict.NoValidAnalyses)
		v.Members = results
		return v
	}

	v := verdict.Verdict{
		Source:                CombinedSource,
		Language:              "unknown",
		IndividualVerdicts:    make(map[string]verdict.Label),
		IndividualConfidences: make(map[string]float64),
		Members:               results,
	}

	votes := 0.0
	for _, r := range valid {
		switch r.Source {
		case verdict.SourceLLM:
			if r.IsFake() {
				votes += r.Confidence
			} else {
				votes -= r.Confidence
			}
			if r.Language != "" {
				v.Language = r.Language
			}
			reasoning := "N/A"
			if r.LLM != nil && r.LLM.Reasoning != "" {
				reasoning = r.LLM.Reasoning
			}
			v.Reasons = append(v.Reasons, verdict.Reason{Category: "Remote LLM", Detail: reasoning})
		case verdict.SourceToxicity:
			detail := "non-toxic content"
			if r.Toxicity != nil && r.Toxicity.IsToxic {
				votes += toxicVote
				detail = "toxic content"
			}
			v.Reasons = append(v.Reasons, verdict.Reason{Category: "Toxicity", Detail: detail})
		default:
			continue
		}
		v.IndividualVerdicts[string(r.Source)] = r.Label
		v.IndividualConfidences[string(r.Source)] = r.Confidence
	}

	v.Label = verdict.Real
	if votes > 0 {
		v.Label = verdict.Fake
		v.FakeVotes = votes
	} else {
		v.RealVotes = -votes
	}
	v.EnsembleScore = votes
	v.Confidence = verdict.Clamp(math.Min(math.Abs(votes), 1.0), 0.5, 0.95)
	v.Explanation = verdict.Render(v.Reasons, "\n")
	return v
}

// Analyzer runs the AI family's extractors and combines them.
type Analyzer struct {
	extractors []verdict.Extractor
}

// NewAnalyzer creates an analyzer over the available extractors. Nil
// extractors are skipped.
func NewAnalyzer(extractors ...verdict.Extractor) *Analyzer {
	a := &Analyzer{}
	for _, x := range extractors {
		if x != nil {
			a.extractors = append(a.extractors, x)
		}
	}
	return a
}

// Sources lists the active extractors.
func (a *Analyzer) Sources() []verdict.Source {
	out := make([]verdict.Source, len(a.extractors))
	for i, x := range a.extractors {
		out[i] = x.Source()
	}
	return out
}

// Analyze runs every extractor and returns the family verdict.
func (a *Analyzer) Analyze(ctx context.Context, text string) verdict.Verdict {
	results := make([]verdict.Result, 0, len(a.extractors))
	for _, x := range a.extractors {
		results = append(results, x.Extract(ctx, text))
	}
	return Combine(results)
}
