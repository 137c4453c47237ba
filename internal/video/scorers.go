package video

import (
	"errors"
	"image"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoFrames is returned when a scorer receives no frames.
	ErrNoFrames = errors.New("no frames to analyze")
	// ErrNotEnoughFrames is returned when temporal analysis has fewer than
	// two frames.
	ErrNotEnoughFrames = errors.New("not enough frames for temporal analysis")
)

// Level is a bucketed suspicion.
type Level string

const (
	LevelHigh    Level = "high"
	LevelMedium  Level = "medium"
	LevelLow     Level = "low"
	LevelVeryLow Level = "very_low"
)

const (
	artifactHigh   = 2.5
	artifactMedium = 1.8
	artifactLow    = 1.2

	entropyStdHigh   = 1.5
	diffStdHigh      = 30
	entropyStdMedium = 1.0
	diffStdMedium    = 20

	textureHigh     = 10
	symmetryHigh    = 60
	textureMedium   = 18
	symmetryMedium  = 40
	maxSymmetryDiff = 100
)

// CompressionReport summarizes the spectral artifact metric over frames.
type CompressionReport struct {
	AvgArtifacts float64 `json:"avg_compression_artifacts"`
	MaxArtifacts float64 `json:"max_compression_artifacts"`
	Quality      string  `json:"quality_level"`
	Suspicion    Level   `json:"modification_suspicion"`
	Frames       int     `json:"analyzed_frames"`
}

// Compression buckets the mean artifact score of the frames.
func Compression(frames []*image.Gray) (*CompressionReport, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	scores := lo.Map(frames, func(f *image.Gray, _ int) float64 { return ArtifactScore(f) })

	r := &CompressionReport{
		AvgArtifacts: stat.Mean(scores, nil),
		MaxArtifacts: lo.Max(scores),
		Frames:       len(frames),
	}
	switch {
	case r.AvgArtifacts > artifactHigh:
		r.Quality, r.Suspicion = "very_low", LevelHigh
	case r.AvgArtifacts > artifactMedium:
		r.Quality, r.Suspicion = "low", LevelMedium
	case r.AvgArtifacts > artifactLow:
		r.Quality, r.Suspicion = "medium", LevelLow
	default:
		r.Quality, r.Suspicion = "high", LevelVeryLow
	}
	return r, nil
}

// TemporalReport summarizes frame-to-frame difference statistics.
type TemporalReport struct {
	AvgEntropy    float64 `json:"avg_entropy"`
	AvgDifference float64 `json:"avg_frame_difference"`
	EntropyStd    float64 `json:"entropy_variation"`
	DifferenceStd float64 `json:"difference_variation"`
	Verdict       string  `json:"temporal_verdict"`
	Suspicion     Level   `json:"edit_suspicion"`
	Transitions   int     `json:"frame_transitions_analyzed"`
}

// Temporal buckets the variation of consecutive-frame difference entropy
// and mean difference.
func Temporal(frames []*image.Gray) (*TemporalReport, error) {
	if len(frames) < 2 {
		return nil, ErrNotEnoughFrames
	}

	n := len(frames) - 1
	entropies := make([]float64, n)
	diffs := make([]float64, n)
	for i := 0; i < n; i++ {
		entropies[i], diffs[i] = DiffStats(frames[i], frames[i+1])
	}

	r := &TemporalReport{Transitions: n}
	r.AvgEntropy, r.EntropyStd = stat.PopMeanStdDev(entropies, nil)
	r.AvgDifference, r.DifferenceStd = stat.PopMeanStdDev(diffs, nil)
	switch {
	case r.EntropyStd > entropyStdHigh || r.DifferenceStd > diffStdHigh:
		r.Verdict, r.Suspicion = "inconsistencies_detected", LevelHigh
	case r.EntropyStd > entropyStdMedium || r.DifferenceStd > diffStdMedium:
		r.Verdict, r.Suspicion = "possible_inconsistencies", LevelMedium
	default:
		r.Verdict, r.Suspicion = "consistent", LevelLow
	}
	return r, nil
}

// FaceReport summarizes texture and symmetry of detected faces.
type FaceReport struct {
	TotalFaces       int     `json:"total_faces_detected"`
	AvgFacesPerFrame float64 `json:"avg_faces_per_frame"`
	AvgTexture       float64 `json:"avg_face_texture"`
	AvgSymmetry      float64 `json:"avg_face_symmetry"`
	Verdict          string  `json:"deepfake_verdict"`
	Confidence       string  `json:"confidence"`
	Suspicion        Level   `json:"deepfake_suspicion"`
	Frames           int     `json:"analyzed_frames"`
}

const faceVerdictNone = "no_faces_detected"

// Face buckets facial texture and symmetry. A nil detector behaves as if no
// faces were found.
func Face(frames []*image.Gray, d FaceDetector) (*FaceReport, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	r := &FaceReport{Frames: len(frames)}
	var textures, symmetries []float64
	for _, f := range frames {
		if d == nil {
			continue
		}
		faces := d.Detect(f)
		r.TotalFaces += len(faces)
		for _, rect := range faces {
			tex, sym := FaceStats(f, rect)
			textures = append(textures, tex)
			symmetries = append(symmetries, sym)
		}
	}
	r.AvgFacesPerFrame = float64(r.TotalFaces) / float64(len(frames))

	if len(textures) == 0 {
		r.Verdict, r.Confidence, r.Suspicion = faceVerdictNone, "n/a", LevelLow
		return r, nil
	}

	r.AvgTexture = stat.Mean(textures, nil)
	r.AvgSymmetry = stat.Mean(symmetries, nil)
	switch {
	case r.AvgTexture < textureHigh || r.AvgSymmetry > symmetryHigh:
		r.Verdict, r.Confidence, r.Suspicion = "deepfake_suspected", "high", LevelHigh
	case r.AvgTexture < textureMedium || r.AvgSymmetry > symmetryMedium:
		r.Verdict, r.Confidence, r.Suspicion = "possible_deepfake", "medium", LevelMedium
	default:
		r.Verdict, r.Confidence, r.Suspicion = "natural", "high", LevelLow
	}
	return r, nil
}
