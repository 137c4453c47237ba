// Package video classifies videos as authentic or deepfake from three frame
// signals: spectral compression artifacts, temporal consistency and facial
// symmetry.
package video

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

// AdvancedMode labels reports produced from decoded frames.
const AdvancedMode = "ffmpeg_advanced"

// DefaultMaxFrames is the number of frames sampled per video.
const DefaultMaxFrames = 50

const visualLanguage = "visual"

// SignalSummary is the numeric view of a frame analysis.
type SignalSummary struct {
	CompressionScore  float64 `json:"compression_score"`
	ConsistencyScore  float64 `json:"consistency_score"`
	FaceScore         float64 `json:"face_score"`
	FinalScore        float64 `json:"final_score"`
	FramesAnalyzed    int     `json:"frames_analyzed"`
	MetadataAvailable bool    `json:"metadata_available"`
}

// Report is the outcome of a video analysis.
type Report struct {
	Verdict         verdict.Verdict    `json:"result"`
	Recommendations []string           `json:"recommendations"`
	Metadata        *Metadata          `json:"video_metadata,omitempty"`
	Signals         *SignalSummary     `json:"ffmpeg_analysis,omitempty"`
	Fusion          *Fusion            `json:"final_verdict,omitempty"`
	Compression     *CompressionReport `json:"compression_analysis,omitempty"`
	Temporal        *TemporalReport    `json:"temporal_analysis,omitempty"`
	Face            *FaceReport        `json:"deepfake_analysis,omitempty"`
}

// Analyzer runs the frame analysis when a decoder is available and the
// fallback otherwise.
type Analyzer struct {
	source    FrameSource
	faces     FaceDetector
	fallback  *FallbackAnalyzer
	maxFrames int
}

// NewAnalyzer creates a video analyzer. source, faces and fallback may be
// nil.
func NewAnalyzer(source FrameSource, faces FaceDetector, fallback *FallbackAnalyzer, maxFrames int) *Analyzer {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	return &Analyzer{source: source, faces: faces, fallback: fallback, maxFrames: maxFrames}
}

// DecoderAvailable reports whether frames can be decoded.
func (a *Analyzer) DecoderAvailable() bool {
	return a.source != nil && a.source.Available()
}

// Analyze classifies the video at path. filename is the name the user
// uploaded, used only by the fallback.
func (a *Analyzer) Analyze(ctx context.Context, path, filename string) (Report, error) {
	start := time.Now()
	if !a.DecoderAvailable() {
		return a.fallbackReport(filename, start, fmt.Errorf("no frame decoder available"))
	}

	meta, err := a.source.Metadata(ctx, path)
	if err != nil {
		log.Printf("Video metadata unavailable for %s: %v", filename, err)
	}
	frames, err := a.source.Frames(ctx, path, meta, a.maxFrames)
	if err != nil || len(frames) == 0 {
		if err == nil {
			err = ErrNoFrames
		}
		log.Printf("Frame extraction failed for %s: %v", filename, err)
		return a.fallbackReport(filename, start, err)
	}

	r := AnalyzeFrames(frames, a.faces)
	r.Metadata = meta
	r.Signals.MetadataAvailable = meta != nil
	r.Verdict.ProcessingTime = time.Since(start).Seconds()
	return r, nil
}

func (a *Analyzer) fallbackReport(filename string, start time.Time, cause error) (Report, error) {
	if a.fallback == nil {
		return Report{}, fmt.Errorf("analyzing video: %w", cause)
	}
	r := a.fallback.Analyze(filename)
	r.Verdict.ProcessingTime = time.Since(start).Seconds()
	r.Verdict.Timestamp = time.Now()
	return r, nil
}

// AnalyzeFrames runs the three scorers over frames and fuses them. A scorer
// that fails is recorded as a failed member and left out of the fusion.
func AnalyzeFrames(frames []*image.Gray, faces FaceDetector) Report {
	comp, compErr := Compression(frames)
	temp, tempErr := Temporal(frames)
	face, faceErr := Face(frames, faces)

	fu := Fuse(comp, temp, face)

	members := []verdict.Result{
		member(verdict.SourceCompression, fu, compErr),
		member(verdict.SourceTemporal, fu, tempErr),
		member(verdict.SourceFace, fu, faceErr),
	}

	v := verdict.Verdict{
		Label:         fu.Label,
		Confidence:    fu.Confidence,
		RiskLevel:     fu.RiskLevel,
		EnsembleScore: fu.Suspicion,
		Language:      visualLanguage,
		Source:        "video",
		Mode:          AdvancedMode,
		Members:       members,
		Timestamp:     time.Now(),
	}
	if fu.Valid() {
		v.Reasons = explain(fu, comp, temp, face)
	} else {
		v.Reasons = []verdict.Reason{{Detail: verdict.NoValidAnalyses}}
	}
	v.Explanation = verdict.Render(v.Reasons, "\n")

	return Report{
		Verdict:         v,
		Recommendations: Recommendations(fu.Label),
		Fusion:          &fu,
		Compression:     comp,
		Temporal:        temp,
		Face:            face,
		Signals: &SignalSummary{
			CompressionScore: fu.Scores[verdict.SourceCompression],
			ConsistencyScore: fu.Scores[verdict.SourceTemporal],
			FaceScore:        fu.Scores[verdict.SourceFace],
			FinalScore:       fu.Suspicion,
			FramesAnalyzed:   len(frames),
		},
	}
}

func member(src verdict.Source, fu Fusion, err error) verdict.Result {
	if err != nil {
		log.Printf("Video %s scorer failed: %v", src, err)
		return verdict.Failed(src, err)
	}
	score := fu.Scores[src]
	label := verdict.Authentic
	if score > corroboration {
		label = verdict.Deepfake
	}
	return verdict.Result{Source: src, Label: label, Confidence: score, Language: visualLanguage}
}

var bucketTitles = map[Bucket]string{
	BucketAuthentic: "AUTHENTIC VIDEO",
	BucketSuspect:   "SUSPICIOUS VIDEO",
	BucketUnclear:   "INCONCLUSIVE RESULT",
	BucketFake:      "DEEPFAKE DETECTED",
}

func explain(fu Fusion, c *CompressionReport, t *TemporalReport, f *FaceReport) []verdict.Reason {
	reasons := []verdict.Reason{
		{Category: "Result", Detail: bucketTitles[fu.Bucket]},
		{Category: "Confidence", Detail: fu.Certainty},
		{Category: "Suspicion score", Detail: fmt.Sprintf("%.3f", fu.Suspicion)},
	}
	if c != nil {
		reasons = append(reasons, verdict.Reason{Category: "Compression", Detail: fmt.Sprintf("quality %s, artifacts %.2f, modification suspicion %s", c.Quality, c.AvgArtifacts, c.Suspicion)})
	}
	if t != nil {
		reasons = append(reasons, verdict.Reason{Category: "Temporal consistency", Detail: fmt.Sprintf("%s, mean entropy %.2f, edit suspicion %s", t.Verdict, t.AvgEntropy, t.Suspicion)})
	} else {
		reasons = append(reasons, verdict.Reason{Category: "Temporal consistency", Detail: ErrNotEnoughFrames.Error()})
	}
	if f != nil {
		reasons = append(reasons, verdict.Reason{Category: "Faces", Detail: fmt.Sprintf("%s, %d faces detected, confidence %s", f.Verdict, f.TotalFaces, f.Confidence)})
	}
	if len(fu.Warnings) > 0 {
		reasons = append(reasons, verdict.Reason{Category: "Warnings", Detail: strings.Join(fu.Warnings, "; ")})
	}
	return reasons
}

// Recommendations returns follow-up advice for a video label.
func Recommendations(l verdict.Label) []string {
	switch l {
	case verdict.Authentic:
		return []string{
			"The video looks authentic based on the technical analysis",
			"Keep checking the source and context",
			"Confirm the credibility of the original source",
			"The video can be considered trustworthy",
		}
	case verdict.Deepfake:
		return []string{
			"The technical analysis indicates digital manipulation",
			"Check the original source carefully",
			"Look for the video on multiple platforms",
			"Consult experts for confirmation",
			"Do not share without further verification",
		}
	default:
		return []string{
			"The analysis cannot determine authenticity with certainty",
			"Inconclusive result: further verification is needed",
			"Check the source and context of the video manually",
			"Look for more information about its origin",
			"Consider a second technical opinion",
			"Use other verification tools as well",
		}
	}
}
