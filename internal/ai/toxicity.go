package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/TobiSchelling/veritas/internal/llm"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

const (
	// DefaultToxicityThreshold marks content as toxic.
	DefaultToxicityThreshold = 0.6
	suspicionFactor          = 0.7
	suspicionThreshold       = 0.3
)

// ToxicityExtractor derives a fake-news suspicion from a moderation
// service's toxicity score.
type ToxicityExtractor struct {
	scorer    llm.ToxicityScorer
	threshold float64
}

// NewToxicityExtractor creates an extractor. A non-positive threshold uses
// DefaultToxicityThreshold.
func NewToxicityExtractor(s llm.ToxicityScorer, threshold float64) *ToxicityExtractor {
	if threshold <= 0 {
		threshold = DefaultToxicityThreshold
	}
	return &ToxicityExtractor{scorer: s, threshold: threshold}
}

func (x *ToxicityExtractor) Source() verdict.Source { return verdict.SourceToxicity }

// Extract scores text. The result label reflects suspicion; the family
// combiner only uses the toxic flag.
func (x *ToxicityExtractor) Extract(ctx context.Context, text string) verdict.Result {
	if x.scorer == nil {
		return verdict.Failed(x.Source(), ErrNotConfigured)
	}

	scores, err := x.scorer.Score(ctx, text)
	if err != nil {
		log.Printf("Toxicity extractor failed: %v", err)
		return verdict.Failed(x.Source(), fmt.Errorf("scoring toxicity: %w", err))
	}

	tox := scores["toxicity"]
	suspicion := tox * suspicionFactor
	d := &verdict.ToxicityDetail{
		Toxicity:      tox,
		FakeSuspicion: suspicion,
		IsToxic:       tox > x.threshold,
		IsSuspicious:  suspicion > suspicionThreshold,
		Scores:        scores,
	}

	label := verdict.Real
	if d.IsSuspicious {
		label = verdict.Fake
	}
	return verdict.Result{
		Source:     verdict.SourceToxicity,
		Label:      label,
		Confidence: tox,
		Toxicity:   d,
	}
}
