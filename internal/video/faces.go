package video

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// FaceDetector finds face regions in a grayscale frame.
type FaceDetector interface {
	Detect(img *image.Gray) []image.Rectangle
}

const (
	minFaceSize     = 30
	maxFaceSize     = 1000
	faceShift       = 0.1
	faceScale       = 1.1
	faceIoU         = 0.2
	faceQualityMin  = 5.0
	faceAngleRadian = 0.0
)

// PigoDetector detects faces with a pigo cascade.
type PigoDetector struct {
	classifier *pigo.Pigo
}

// LoadPigoDetector unpacks the cascade file at path (pigo's "facefinder").
func LoadPigoDetector(path string) (*PigoDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading face cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking face cascade: %w", err)
	}
	return &PigoDetector{classifier: classifier}, nil
}

// Detect returns square face regions above the quality threshold.
func (d *PigoDetector) Detect(img *image.Gray) []image.Rectangle {
	b := img.Bounds()
	cols, rows := b.Dx(), b.Dy()
	if cols == 0 || rows == 0 {
		return nil
	}

	pixels := img.Pix
	if img.Stride != cols {
		pixels = make([]uint8, 0, cols*rows)
		for y := 0; y < rows; y++ {
			off := y * img.Stride
			pixels = append(pixels, img.Pix[off:off+cols]...)
		}
	}

	params := pigo.CascadeParams{
		MinSize:     minFaceSize,
		MaxSize:     min(maxFaceSize, min(cols, rows)),
		ShiftFactor: faceShift,
		ScaleFactor: faceScale,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}
	dets := d.classifier.RunCascade(params, faceAngleRadian)
	dets = d.classifier.ClusterDetections(dets, faceIoU)

	var faces []image.Rectangle
	for _, det := range dets {
		if det.Q < faceQualityMin {
			continue
		}
		half := det.Scale / 2
		r := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half).Add(b.Min)
		faces = append(faces, r.Intersect(b))
	}
	return faces
}
