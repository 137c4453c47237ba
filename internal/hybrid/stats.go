package hybrid

import (
	"github.com/samber/lo"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

// Statistics aggregates a set of verdicts.
type Statistics struct {
	Total                int            `json:"total_analyses"`
	Fake                 int            `json:"fake_news_detected"`
	Real                 int            `json:"real_news_detected"`
	Inconclusive         int            `json:"inconclusive"`
	FakePercentage       float64        `json:"fake_percentage"`
	AverageConfidence    float64        `json:"average_confidence"`
	AgreementRate        float64        `json:"ai_ml_agreement_rate"`
	LanguageDistribution map[string]int `json:"language_distribution"`
	ModeDistribution     map[string]int `json:"analysis_mode_distribution"`
}

// Summarize computes totals, the fake percentage, average confidence,
// AI/ML agreement rate and the language and mode distributions.
func Summarize(vs []verdict.Verdict) Statistics {
	st := Statistics{
		Total:                len(vs),
		LanguageDistribution: map[string]int{},
		ModeDistribution:     map[string]int{},
	}
	if len(vs) == 0 {
		return st
	}

	st.Fake = lo.CountBy(vs, func(v verdict.Verdict) bool { return v.Label == verdict.Fake })
	st.Real = lo.CountBy(vs, func(v verdict.Verdict) bool { return v.Label == verdict.Real })
	st.Inconclusive = st.Total - st.Fake - st.Real

	n := float64(st.Total)
	st.FakePercentage = float64(st.Fake) / n * 100
	st.AverageConfidence = lo.SumBy(vs, func(v verdict.Verdict) float64 { return v.Confidence }) / n
	st.AgreementRate = float64(lo.CountBy(vs, func(v verdict.Verdict) bool { return v.Agreement })) / n * 100

	st.LanguageDistribution = lo.CountValuesBy(vs, func(v verdict.Verdict) string {
		if v.Language == "" {
			return "unknown"
		}
		return v.Language
	})
	st.ModeDistribution = lo.CountValuesBy(vs, func(v verdict.Verdict) string {
		if v.Mode == "" {
			return string(ModeHybrid)
		}
		return v.Mode
	})
	return st
}
