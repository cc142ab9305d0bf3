package gesture

import (
	"errors"
	"fmt"
)

// ErrPointCountMismatch is returned when the baseline and the current frame
// track a different number of contact points.
var ErrPointCountMismatch = errors.New("contact point count mismatch")

// DefaultDebounceThreshold is the displacement radius, in pixels, below
// which movement is treated as noise.
const DefaultDebounceThreshold = 0.1

// ContactPoint is one tracked marker: its pixel position and the depth
// sampled there.
type ContactPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Debounced is the output of Debounce. Points, DX and DY have one entry
// per input contact.
type Debounced struct {
	Points []ContactPoint
	DX     []float64
	DY     []float64
}

// Len returns the number of contacts.
func (d Debounced) Len() int {
	return len(d.Points)
}

// Debounce suppresses sub-threshold jitter. A contact whose in-plane
// displacement from its baseline is shorter than threshold is reported at
// the baseline position with an exact zero displacement; any other contact
// passes through unchanged. Depth always comes from the current frame.
func Debounce(baseline, current []ContactPoint, threshold float64) (Debounced, error) {
	if len(baseline) != len(current) {
		return Debounced{}, fmt.Errorf("%w: baseline has %d, current has %d",
			ErrPointCountMismatch, len(baseline), len(current))
	}

	out := Debounced{
		Points: make([]ContactPoint, len(current)),
		DX:     make([]float64, len(current)),
		DY:     make([]float64, len(current)),
	}
	limit := threshold * threshold

	for i := range current {
		b, c := baseline[i], current[i]
		dx := c.X - b.X
		dy := c.Y - b.Y

		if dx*dx+dy*dy < limit {
			out.Points[i] = ContactPoint{X: b.X, Y: b.Y, Z: c.Z}
			continue
		}

		out.Points[i] = c
		out.DX[i] = dx
		out.DY[i] = dy
	}

	return out, nil
}
