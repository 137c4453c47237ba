package ml

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/TobiSchelling/veritas/internal/llm"
	"github.com/TobiSchelling/veritas/internal/pattern"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

// ErrNotConfigured is returned when an extractor has no backing model.
var ErrNotConfigured = errors.New("model not configured")

const (
	fakePatternWeight = 0.7
	realPatternWeight = 0.2
	minFakeScore      = 0.3
)

// EmbeddingExtractor compares a text against the fake and real reference
// corpora by cosine similarity and adjusts the result with pattern scores.
type EmbeddingExtractor struct {
	embedder llm.Embedder
	scorer   *pattern.Scorer
	fake     []string
	real     []string

	mu       sync.Mutex
	fakeVecs [][]float64
	realVecs [][]float64
}

// NewEmbeddingExtractor creates an extractor over the built-in corpora.
func NewEmbeddingExtractor(embedder llm.Embedder, scorer *pattern.Scorer) *EmbeddingExtractor {
	if scorer == nil {
		scorer = pattern.NewScorer()
	}
	return &EmbeddingExtractor{
		embedder: embedder,
		scorer:   scorer,
		fake:     knownFake,
		real:     knownReal,
	}
}

func (x *EmbeddingExtractor) Source() verdict.Source { return verdict.SourceEmbedding }

// references embeds both corpora on first use and caches them once the
// embedder has succeeded.
func (x *EmbeddingExtractor) references(ctx context.Context) ([][]float64, [][]float64, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.fakeVecs != nil && x.realVecs != nil {
		return x.fakeVecs, x.realVecs, nil
	}

	texts := make([]string, 0, len(x.fake)+len(x.real))
	texts = append(texts, x.fake...)
	texts = append(texts, x.real...)

	vecs, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding reference corpus: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, nil, fmt.Errorf("embedding reference corpus: got %d vectors for %d texts", len(vecs), len(texts))
	}

	x.fakeVecs = vecs[:len(x.fake)]
	x.realVecs = vecs[len(x.fake):]
	return x.fakeVecs, x.realVecs, nil
}

// Extract classifies text.
func (x *EmbeddingExtractor) Extract(ctx context.Context, text string) verdict.Result {
	if x.embedder == nil {
		return verdict.Failed(x.Source(), ErrNotConfigured)
	}

	fakeVecs, realVecs, err := x.references(ctx)
	if err != nil {
		log.Printf("Embedding extractor failed: %v", err)
		return verdict.Failed(x.Source(), err)
	}

	vecs, err := x.embedder.Embed(ctx, []string{text})
	if err != nil {
		log.Printf("Embedding extractor failed: %v", err)
		return verdict.Failed(x.Source(), fmt.Errorf("embedding text: %w", err))
	}
	if len(vecs) != 1 {
		return verdict.Failed(x.Source(), fmt.Errorf("embedding text: got %d vectors", len(vecs)))
	}

	fakeIdx, fakeSim := mostSimilar(vecs[0], fakeVecs)
	realIdx, realSim := mostSimilar(vecs[0], realVecs)
	patterns := x.scorer.Score(text)

	return classifyEmbedding(embeddingEvidence{
		fakeSim:  fakeSim,
		realSim:  realSim,
		fakeText: x.fake[fakeIdx],
		realText: x.real[realIdx],
		patterns: patterns,
	})
}

type embeddingEvidence struct {
	fakeSim, realSim   float64
	fakeText, realText string
	patterns           pattern.Score
}

func classifyEmbedding(e embeddingEvidence) verdict.Result {
	p := e.patterns
	adjFake := e.fakeSim + p.FakeScore*fakePatternWeight
	adjReal := e.realSim + p.RealScore*realPatternWeight

	isFake := adjFake > adjReal && adjFake > minFakeScore

	// Boosts applied after the decision still raise confidence.
	if p.Details.FakeScience > 1 {
		adjFake += 0.15
	}
	if p.ConfidenceBonus > 0.08 {
		adjFake += 0.1
	}

	diff := math.Abs(adjFake - adjReal)
	confidence := math.Min(math.Max(adjFake, adjReal), 0.9) +
		math.Min(diff*0.2, 0.15) +
		math.Min(p.ConfidenceBonus, 0.1)
	confidence = verdict.Clamp(confidence, 0.55, 0.95)

	label := verdict.Real
	if isFake {
		label = verdict.Fake
	}
	return verdict.Result{
		Source:     verdict.SourceEmbedding,
		Label:      label,
		Confidence: confidence,
		Embedding: &verdict.EmbeddingDetail{
			FakeSimilarity:  e.fakeSim,
			RealSimilarity:  e.realSim,
			AdjustedFake:    adjFake,
			AdjustedReal:    adjReal,
			MostSimilarFake: e.fakeText,
			MostSimilarReal: e.realText,
			Patterns:        p,
		},
	}
}

func mostSimilar(v []float64, refs [][]float64) (int, float64) {
	best, bestSim := 0, math.Inf(-1)
	for i, r := range refs {
		if s := cosine(v, r); s > bestSim {
			best, bestSim = i, s
		}
	}
	if math.IsInf(bestSim, -1) {
		return 0, 0
	}
	return best, bestSim
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
