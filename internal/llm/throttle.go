package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// perMinute converts a request budget into a limiter. Zero or negative
// means unlimited.
func perMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

// ThrottledProvider limits the request rate of a Provider.
type ThrottledProvider struct {
	Provider
	limiter *rate.Limiter
}

// ThrottleProvider wraps p so that at most n requests per minute are sent.
func ThrottleProvider(p Provider, n int) *ThrottledProvider {
	return &ThrottledProvider{Provider: p, limiter: perMinute(n)}
}

// Generate waits for the limiter before delegating.
func (t *ThrottledProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return t.Provider.Generate(ctx, prompt, maxTokens)
}

// ThrottledScorer limits the request rate of a ToxicityScorer.
type ThrottledScorer struct {
	ToxicityScorer
	limiter *rate.Limiter
}

// ThrottleScorer wraps s so that at most n requests per minute are sent.
func ThrottleScorer(s ToxicityScorer, n int) *ThrottledScorer {
	return &ThrottledScorer{ToxicityScorer: s, limiter: perMinute(n)}
}

// Score waits for the limiter before delegating.
func (t *ThrottledScorer) Score(ctx context.Context, text string) (map[string]float64, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.ToxicityScorer.Score(ctx, text)
}
