package sensor

import "github.com/ayusman/tactipad/internal/detector"

// DemoDevice returns a MockDevice that loops through every gesture once
// per pass: slide left and back, slide forward and back, then press.
// It lets the pipeline run without hardware.
func DemoDevice() *MockDevice {
	origin := detector.GridMarkers(3, 3, 50, 30, 25)
	rest := uniformDepth(len(origin), 20)

	at := func(dx, dy, z float64) MockStep {
		return MockStep{
			Calibrated: true,
			Markers:    detector.Shift(origin, dx, dy),
			Depth:      uniformDepth(len(origin), z),
		}
	}

	steps := []MockStep{
		{Calibrated: false},
		{Calibrated: false},
		{Calibrated: true, Markers: origin, Depth: rest},
	}
	for i := 0; i < 100; i++ {
		steps = append(steps,
			at(0, 0, 20),
			at(3, 0, 20),
			at(3, 0, 20),
			at(0, 0, 20),
			at(0, 3, 20),
			at(0, 0, 20),
			at(0, 0, 100),
			at(0, 0, 100),
			at(0, 0, 20),
		)
	}
	return NewMockDevice(origin, steps...)
}

func uniformDepth(n int, z float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = z
	}
	return out
}
