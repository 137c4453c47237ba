package video

import (
	"math"

	"github.com/samber/lo"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

// Bucket is the fused video classification before it is mapped to a label.
type Bucket string

const (
	BucketFake      Bucket = "FAKE"
	BucketSuspect   Bucket = "SUSPECT"
	BucketUnclear   Bucket = "UNCLEAR"
	BucketAuthentic Bucket = "AUTHENTIC"
)

const (
	compressionHighAnchor   = 0.8
	compressionMediumAnchor = 0.5
	temporalHighAnchor      = 0.9
	temporalMediumAnchor    = 0.6
	faceHighAnchor          = 0.9
	faceMediumAnchor        = 0.6
	faceFloor               = 0.1

	// corroboration is the compression or temporal sub-score a face anomaly
	// needs before it counts.
	corroboration = 0.2
)

// sources fixes the summation order of the sub-scores.
var sources = []verdict.Source{verdict.SourceCompression, verdict.SourceTemporal, verdict.SourceFace}

// Fusion is the combined video suspicion.
type Fusion struct {
	Bucket     Bucket                     `json:"bucket"`
	Label      verdict.Label              `json:"verdict"`
	Confidence float64                    `json:"confidence"`
	Certainty  string                     `json:"certainty"`
	RiskLevel  verdict.RiskLevel          `json:"risk_level"`
	Suspicion  float64                    `json:"suspicion_score"`
	Scores     map[verdict.Source]float64 `json:"individual_scores"`
	Warnings   []string                   `json:"warnings,omitempty"`
}

// Valid reports whether at least one sub-score was available.
func (f Fusion) Valid() bool {
	return len(f.Scores) > 0
}

// CompressionScore maps the compression bucket to its anchor. Low and very
// low suspicion scale with the raw artifact level.
func CompressionScore(r *CompressionReport) (float64, string) {
	switch r.Suspicion {
	case LevelHigh:
		return compressionHighAnchor, "High compression artifacts"
	case LevelMedium:
		return compressionMediumAnchor, "Moderate compression artifacts"
	default:
		return verdict.Clamp(r.AvgArtifacts*0.5, 0.1, 0.3), ""
	}
}

// TemporalScore maps the temporal bucket to its anchor. Low suspicion
// scales with the entropy and difference variation.
func TemporalScore(r *TemporalReport) (float64, string) {
	switch r.Suspicion {
	case LevelHigh:
		return temporalHighAnchor, "Temporal inconsistencies detected"
	case LevelMedium:
		return temporalMediumAnchor, "Possible temporal inconsistencies"
	default:
		return verdict.Clamp((r.EntropyStd+r.DifferenceStd/50)*0.1, 0.05, 0.2), ""
	}
}

// FaceScore maps the face bucket to its anchor. A facial anomaly only
// escalates when corroborated; otherwise it stays at the floor.
func FaceScore(r *FaceReport, corroborated bool) (float64, string) {
	if !corroborated {
		return faceFloor, ""
	}
	switch r.Suspicion {
	case LevelHigh:
		return faceHighAnchor, "Deepfake indicators detected"
	case LevelMedium:
		return faceMediumAnchor, "Possible deepfake indicators"
	default:
		return faceFloor, ""
	}
}

// Fuse combines the available sub-scores; a nil report is a failed
// extractor and is left out of the mean.
func Fuse(c *CompressionReport, t *TemporalReport, f *FaceReport) Fusion {
	fu := Fusion{Scores: make(map[verdict.Source]float64, 3)}
	add := func(src verdict.Source, score float64, warning string) {
		fu.Scores[src] = score
		if warning != "" {
			fu.Warnings = append(fu.Warnings, warning)
		}
	}

	if c != nil {
		score, warning := CompressionScore(c)
		add(verdict.SourceCompression, score, warning)
	}
	if t != nil {
		score, warning := TemporalScore(t)
		add(verdict.SourceTemporal, score, warning)
	}
	if f != nil {
		corroborated := fu.Scores[verdict.SourceCompression] > corroboration || fu.Scores[verdict.SourceTemporal] > corroboration
		score, warning := FaceScore(f, corroborated)
		add(verdict.SourceFace, score, warning)
	}

	if !fu.Valid() {
		fu.Bucket = BucketUnclear
		fu.Label = verdict.Inconclusive
		fu.RiskLevel = verdict.RiskMedium
		fu.Certainty = "n/a"
		return fu
	}

	present := lo.Filter(sources, func(src verdict.Source, _ int) bool {
		_, ok := fu.Scores[src]
		return ok
	})
	fu.Suspicion = lo.SumBy(present, func(src verdict.Source) float64 { return fu.Scores[src] }) / float64(len(present))
	fu.Bucket, fu.Certainty, fu.RiskLevel = bucket(fu.Suspicion)
	fu.Label = labelFor(fu.Bucket)
	fu.Confidence = confidenceFor(fu.Label, fu.Suspicion)
	return fu
}

func bucket(s float64) (Bucket, string, verdict.RiskLevel) {
	switch {
	case s > 0.7:
		return BucketFake, "high", verdict.RiskVeryHigh
	case s > 0.5:
		return BucketSuspect, "medium", verdict.RiskHigh
	case s > 0.3:
		return BucketUnclear, "low", verdict.RiskMedium
	default:
		return BucketAuthentic, "high", verdict.RiskLow
	}
}

// labelFor maps a bucket to its label. SUSPECT is reported as deepfake.
func labelFor(b Bucket) verdict.Label {
	switch b {
	case BucketFake, BucketSuspect:
		return verdict.Deepfake
	case BucketAuthentic:
		return verdict.Authentic
	default:
		return verdict.Inconclusive
	}
}

func confidenceFor(l verdict.Label, s float64) float64 {
	switch l {
	case verdict.Authentic:
		return verdict.Clamp(1.0-s*1.5, 0.7, 0.95)
	case verdict.Deepfake:
		return verdict.Clamp(s*1.3, 0.6, 0.95)
	default:
		return verdict.Clamp(0.5-math.Abs(s-0.5), 0.3, 0.6)
	}
}
