package ml

import (
	"fmt"
	"math"
	"strings"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

// Weights are the per-extractor vote weights of the ML family.
type Weights struct {
	Embedding float64 `yaml:"embedding" json:"embedding"`
	Sentiment float64 `yaml:"sentiment" json:"sentiment"`
	BoW       float64 `yaml:"bow" json:"bow"`
}

// DefaultWeights favours semantic similarity over tone and keywords.
func DefaultWeights() Weights {
	return Weights{Embedding: 2.0, Sentiment: 1.0, BoW: 0.8}
}

// CombinedSource labels verdicts produced by Combine.
const CombinedSource = "ml_combined"

// Combine fuses the ML family's extractor results. Error-bearing results
// are ignored; with none left the verdict is unknown.
func Combine(results []verdict.Result, w Weights) verdict.Verdict {
	var emb, sent, bow *verdict.Result
	for i := range results {
		r := &results[i]
		if !r.OK() {
			continue
		}
		switch {
		case r.Source == verdict.SourceEmbedding && r.Embedding != nil && emb == nil:
			emb = r
		case r.Source == verdict.SourceSentiment && r.Sentiment != nil && sent == nil:
			sent = r
		case r.Source == verdict.SourceBoW && bow == nil:
			bow = r
		}
	}
	if emb == nil && sent == nil && bow == nil {
		v := verdict.NewUnknown(CombinedSource, verdict.NoValidAnalyses)
		v.Members = results
		return v
	}

	var fakeVotes, realVotes, confSum, weightSum float64
	v := verdict.Verdict{
		Source:                CombinedSource,
		IndividualVerdicts:    make(map[string]verdict.Label),
		IndividualConfidences: make(map[string]float64),
		Members:               results,
	}
	record := func(r *verdict.Result, weight float64) {
		if r.IsFake() {
			fakeVotes += weight
		} else {
			realVotes += weight
		}
		confSum += r.Confidence * weight
		weightSum += weight
		v.IndividualVerdicts[string(r.Source)] = r.Label
		v.IndividualConfidences[string(r.Source)] = r.Confidence
	}

	if emb != nil {
		record(emb, w.Embedding)
		if emb.IsFake() {
			p := emb.Embedding.Patterns
			switch {
			case p.Details.AbsurdClaims > 0:
				fakeVotes += 2.0
			case p.FakeScore > 0.3:
				fakeVotes += 1.0
			case p.FakeScore > 0.2:
				fakeVotes += 0.5
			}
		}
	}
	if sent != nil {
		record(sent, w.Sentiment)
		if sent.IsFake() && sent.Sentiment.Manipulation > 0.3 {
			fakeVotes += 0.3
		}
	}
	if bow != nil {
		record(bow, w.BoW)
	}

	v.Label = verdict.Real
	if fakeVotes > realVotes {
		v.Label = verdict.Fake
	}
	v.FakeVotes, v.RealVotes = fakeVotes, realVotes
	v.Confidence = combinedConfidence(emb, sent, fakeVotes, realVotes, confSum, weightSum)
	v.Reasons = explain(emb, sent, bow)
	v.Explanation = verdict.Render(v.Reasons, "; ")
	return v
}

func combinedConfidence(emb, sent *verdict.Result, fakeVotes, realVotes, confSum, weightSum float64) float64 {
	if weightSum <= 0 {
		return 0.5
	}
	base := confSum / weightSum

	ratio := 0.5
	if fakeVotes+realVotes > 0 {
		ratio = math.Max(fakeVotes, realVotes) / (fakeVotes + realVotes)
	}
	consensus := (ratio - 0.5) * 0.4

	agreement := 0.05
	if weightSum >= 3 {
		agreement = 0.1
	}

	subtle := 0.0
	if emb != nil {
		p := emb.Embedding.Patterns
		if p.Details.AbsurdClaims > 0 {
			subtle = 0.15
		} else if p.FakeScore > 0.3 {
			subtle = 0.08
		}
	}

	linguistic := 0.0
	if sent != nil && sent.Sentiment.Manipulation > 0.3 {
		linguistic = 0.06
	}

	conf := math.Min(base+consensus+agreement+subtle+linguistic, 0.95)
	return math.Max(conf, 0.65)
}

func explain(emb, sent, bow *verdict.Result) []verdict.Reason {
	var reasons []verdict.Reason

	if emb != nil {
		d := emb.Embedding
		line := fmt.Sprintf("%.2f fake vs %.2f real", d.FakeSimilarity, d.RealSimilarity)
		pd := d.Patterns.Details
		var info []string
		if pd.AbsurdClaims > 0 {
			info = append(info, fmt.Sprintf("ABSURD CLAIMS: %d", pd.AbsurdClaims))
		}
		if pd.Exaggeration > 0 {
			info = append(info, fmt.Sprintf("exaggeration: %d", pd.Exaggeration))
		}
		if pd.FakeCredibleSources > 0 {
			info = append(info, fmt.Sprintf("fake credible sources: %d", pd.FakeCredibleSources))
		}
		if pd.Conspiracy > 0 {
			info = append(info, fmt.Sprintf("conspiracy: %d", pd.Conspiracy))
		}
		if pd.FakeScience > 0 {
			info = append(info, fmt.Sprintf("fake science: %d", pd.FakeScience))
		}
		if len(info) > 0 {
			line += " (patterns: " + strings.Join(info, ", ") + ")"
		}
		reasons = append(reasons, verdict.Reason{Category: "Similarity", Detail: line})
	}

	if sent != nil {
		line := sent.Sentiment.Reasoning
		if len(sent.Sentiment.Flags) > 0 {
			line += " (flags: " + strings.Join(sent.Sentiment.Flags, ", ") + ")"
		}
		reasons = append(reasons, verdict.Reason{Category: "Sentiment", Detail: line})
	}

	if bow != nil {
		reasons = append(reasons, verdict.Reason{
			Category: "Traditional model",
			Detail:   fmt.Sprintf("%.2f confidence", bow.Confidence),
		})
	}
	return reasons
}
