// Package ml is the local-model family: embedding similarity against
// reference corpora, sentiment with linguistic manipulation analysis, and a
// traditional keyword model, fused by weighted voting.
package ml

import (
	"context"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

// Analyzer runs the ML family's extractors and combines them.
type Analyzer struct {
	extractors []verdict.Extractor
	weights    Weights
}

// NewAnalyzer creates an analyzer over the available extractors. Nil
// extractors are skipped.
func NewAnalyzer(weights Weights, extractors ...verdict.Extractor) *Analyzer {
	a := &Analyzer{weights: weights}
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

	v := Combine(results, a.weights)
	if v.Valid() {
		v.Language = DetectLanguage(text)
	}
	return v
}
