package gesture

import (
	"math"
	"time"
)

// samplePrecision is the rounding applied to aggregated values so that
// classification is reproducible across runs.
const samplePrecision = 1e6

// Sample is the aggregate of one acquisition cycle: mean filtered
// displacement in x and y, and mean raw depth.
type Sample struct {
	X  float64   `json:"x"`
	Y  float64   `json:"y"`
	Z  float64   `json:"z"`
	At time.Time `json:"at"`
}

// Aggregate reduces the debounced contacts to a single Sample. It returns
// false when there are no contacts, in which case no sample is produced.
func Aggregate(d Debounced) (Sample, bool) {
	n := d.Len()
	if n == 0 {
		return Sample{}, false
	}

	var sx, sy, sz float64
	for i := 0; i < n; i++ {
		sx += d.DX[i]
		sy += d.DY[i]
		sz += d.Points[i].Z
	}

	return Sample{
		X: round(sx / float64(n)),
		Y: round(sy / float64(n)),
		Z: round(sz / float64(n)),
	}, true
}

func round(v float64) float64 {
	return math.Round(v*samplePrecision) / samplePrecision
}
