package sensor

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/tactipad/internal/detector"
	"github.com/ayusman/tactipad/internal/gesture"
)

// NormalizeDepth rescales depth to the full 0-255 range as 8-bit. The
// caller closes the result.
func NormalizeDepth(depth *gocv.Mat) gocv.Mat {
	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Normalize(*depth, &scaled, 0, 255, gocv.NormMinMax)

	out := gocv.NewMat()
	scaled.ConvertTo(&out, gocv.MatTypeCV8U)
	return out
}

// Contacts samples the normalized depth map at each marker. Marker
// coordinates are truncated to whole pixels and clipped into the map, and
// the contact is reported at that pixel.
func Contacts(depth *gocv.Mat, markers []detector.Marker) []gesture.ContactPoint {
	if depth == nil || depth.Empty() || len(markers) == 0 {
		return nil
	}

	norm := NormalizeDepth(depth)
	defer norm.Close()

	rows, cols := norm.Rows(), norm.Cols()
	points := make([]gesture.ContactPoint, len(markers))
	for i, m := range markers {
		x := clip(int(m.X), cols-1)
		y := clip(int(m.Y), rows-1)
		points[i] = gesture.ContactPoint{
			X: float64(x),
			Y: float64(y),
			Z: float64(norm.GetUCharAt(y, x)),
		}
	}
	return points
}

func clip(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
