// Package fixtures renders synthetic gel images for tests and demos.
package fixtures

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/tactipad/internal/detector"
)

// Default frame geometry.
const (
	Rows         = 120
	Cols         = 160
	MarkerRadius = 6
)

var (
	gelColor    = gocv.NewScalar(200, 200, 200, 0)
	markerColor = color.RGBA{20, 20, 20, 0}
)

// GelFrame draws dark filled dots at markers on a light background.
// The caller owns the returned Mat.
func GelFrame(rows, cols int, markers []detector.Marker, radius int) gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(gelColor, rows, cols, gocv.MatTypeCV8UC3)
	for _, m := range markers {
		center := image.Point{X: int(m.X + 0.5), Y: int(m.Y + 0.5)}
		gocv.Circle(&img, center, radius, markerColor, -1)
	}
	return img
}

// Sequence renders one default-sized frame per marker set.
func Sequence(steps ...[]detector.Marker) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, len(steps))
	for _, markers := range steps {
		f := GelFrame(Rows, Cols, markers, MarkerRadius)
		frames = append(frames, &f)
	}
	return frames
}

// Close frees every frame.
func Close(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}

// Swipe renders warmup frames at origin followed by cycles of
// origin-shifted-origin, for a horizontal push of dx pixels.
func Swipe(origin []detector.Marker, warmup, cycles int, dx float64) []*gocv.Mat {
	var steps [][]detector.Marker
	for i := 0; i < warmup; i++ {
		steps = append(steps, origin)
	}
	shifted := detector.Shift(origin, dx, 0)
	for i := 0; i < cycles; i++ {
		steps = append(steps, shifted, origin)
	}
	return Sequence(steps...)
}
