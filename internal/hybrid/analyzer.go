package hybrid

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TobiSchelling/veritas/internal/ml"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

// Family is one analyzer family: it runs its extractors over text and
// reduces their results to a single verdict.
type Family interface {
	Analyze(ctx context.Context, text string) verdict.Verdict
	Sources() []verdict.Source
}

// Analyzer orchestrates the families for one request.
type Analyzer struct {
	ai          Family
	ml          Family
	traditional verdict.Extractor
	weights     Weights
}

// NewAnalyzer creates an orchestrator. Any family may be nil, in which case
// it is reported as unavailable.
func NewAnalyzer(ai, ml Family, traditional verdict.Extractor, w Weights) *Analyzer {
	return &Analyzer{ai: ai, ml: ml, traditional: traditional, weights: w}
}

// Analyze runs both families concurrently and combines them. A family that
// panics is converted into an unknown verdict so the other can still decide.
func (a *Analyzer) Analyze(ctx context.Context, text string) verdict.Verdict {
	start := time.Now()
	if strings.TrimSpace(text) == "" {
		return a.stamp(verdict.NewUnknown(CombinedSource, "no text to analyze"), ModeHybrid, start)
	}

	var aiV, mlV verdict.Verdict
	var g errgroup.Group
	g.Go(func() error {
		aiV = runFamily(ctx, "ai", a.ai, text)
		return nil
	})
	g.Go(func() error {
		mlV = runFamily(ctx, "ml", a.ml, text)
		return nil
	})
	_ = g.Wait()

	return a.stamp(Combine(aiV, mlV, a.weights), ModeHybrid, start)
}

// AnalyzeMode runs text through the requested mode.
func (a *Analyzer) AnalyzeMode(ctx context.Context, mode Mode, text string) (verdict.Verdict, error) {
	start := time.Now()
	switch mode {
	case ModeHybrid:
		return a.Analyze(ctx, text), nil
	case ModeAIOnly:
		return a.stamp(Finalize(runFamily(ctx, "ai", a.ai, text)), mode, start), nil
	case ModeMLOnly:
		return a.stamp(Finalize(runFamily(ctx, "ml", a.ml, text)), mode, start), nil
	case ModeTraditional:
		if a.traditional == nil {
			return a.stamp(verdict.NewUnknown(string(verdict.SourceBoW), "traditional model not available"), mode, start), nil
		}
		v := verdict.FromResult(a.traditional.Extract(ctx, text))
		if v.Valid() && v.Language == "" {
			v.Language = ml.DetectLanguage(text)
		}
		return a.stamp(Finalize(v), mode, start), nil
	default:
		return verdict.Verdict{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Availability reports which extractors the orchestrator can reach.
func (a *Analyzer) Availability() Availability {
	var active []verdict.Source
	if a.ai != nil {
		active = append(active, a.ai.Sources()...)
	}
	if a.ml != nil {
		active = append(active, a.ml.Sources()...)
	}
	if a.traditional != nil {
		active = append(active, a.traditional.Source())
	}
	return NewAvailability(active...)
}

func (a *Analyzer) stamp(v verdict.Verdict, mode Mode, start time.Time) verdict.Verdict {
	v.Mode = string(mode)
	v.ProcessingTime = time.Since(start).Seconds()
	v.Timestamp = time.Now()
	return v
}

func runFamily(ctx context.Context, name string, f Family, text string) (v verdict.Verdict) {
	if f == nil {
		return verdict.NewUnknown(name, name+" analysis not available")
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error in %s analysis: %v", name, r)
			v = verdict.NewUnknown(name, fmt.Sprintf("%s analysis failed: %v", name, r))
		}
	}()
	return f.Analyze(ctx, text)
}
