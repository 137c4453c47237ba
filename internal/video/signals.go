package video

import (
	"image"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// ArtifactScore is the spectral irregularity of a frame: the standard
// deviation of its log-magnitude spectrum divided by the mean. Quadrant
// order does not affect either statistic, so the spectrum is not shifted.
func ArtifactScore(img *image.Gray) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	grid := make([][]complex128, h)
	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row[x] = complex(float64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y), 0)
		}
		grid[y] = rowFFT.Coefficients(nil, row)
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	out := make([]complex128, h)
	mags := make([]float64, 0, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = grid[y][x]
		}
		colFFT.Coefficients(out, col)
		for _, c := range out {
			mags = append(mags, math.Log(cmplx.Abs(c)+1))
		}
	}

	mean, std := stat.PopMeanStdDev(mags, nil)
	if mean <= 0 {
		return 0
	}
	return std / mean
}

// DiffStats returns the Shannon entropy (bits) of the absolute-difference
// histogram of two frames and the mean absolute difference. Frames of
// different sizes are compared over their common area.
func DiffStats(a, b *image.Gray) (entropy, meanDiff float64) {
	ab, bb := a.Bounds(), b.Bounds()
	w := min(ab.Dx(), bb.Dx())
	h := min(ab.Dy(), bb.Dy())
	n := w * h
	if n == 0 {
		return 0, 0
	}

	var hist [256]float64
	sum := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pa := int(a.GrayAt(ab.Min.X+x, ab.Min.Y+y).Y)
			pb := int(b.GrayAt(bb.Min.X+x, bb.Min.Y+y).Y)
			d := pa - pb
			if d < 0 {
				d = -d
			}
			hist[d]++
			sum += float64(d)
		}
	}

	for _, c := range hist {
		p := c / float64(n)
		entropy -= p * math.Log2(p+1e-7)
	}
	return entropy, sum / float64(n)
}

// FaceStats returns the texture (pixel standard deviation) of a face region
// and the mean absolute difference between its left half and its mirrored
// right half. An odd-width region cannot be mirrored exactly and reports
// maxSymmetryDiff.
func FaceStats(img *image.Gray, r image.Rectangle) (texture, symmetry float64) {
	r = r.Intersect(img.Bounds())
	w, h := r.Dx(), r.Dy()
	if w == 0 || h == 0 {
		return 0, maxSymmetryDiff
	}

	px := make([]float64, 0, w*h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			px = append(px, float64(img.GrayAt(x, y).Y))
		}
	}
	_, texture = stat.PopMeanStdDev(px, nil)

	half := w / 2
	if w-half != half {
		return texture, maxSymmetryDiff
	}
	diff := 0.0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := 0; x < half; x++ {
			d := int(img.GrayAt(r.Min.X+x, y).Y) - int(img.GrayAt(r.Max.X-1-x, y).Y)
			if d < 0 {
				d = -d
			}
			diff += float64(d)
		}
	}
	return texture, diff / float64(half*h)
}
