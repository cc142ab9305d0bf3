package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns scripted marker sets, one per call, repeating the last.
type MockDetector struct {
	mu     sync.Mutex
	frames [][]Marker
	index  int
	err    error
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector(frames ...[]Marker) *MockDetector {
	return &MockDetector{frames: frames}
}

// SetMarkers replaces the script with a single marker set.
func (m *MockDetector) SetMarkers(markers []Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = [][]Marker{markers}
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted marker set or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Marker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.frames) == 0 {
		return nil, nil
	}

	markers := m.frames[m.index]
	if m.index < len(m.frames)-1 {
		m.index++
	}
	return append([]Marker(nil), markers...), nil
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GridMarkers returns a rows x cols grid of markers starting at (x0, y0).
func GridMarkers(rows, cols int, x0, y0, spacing float64) []Marker {
	markers := make([]Marker, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			markers = append(markers, Marker{X: x0 + float64(c)*spacing, Y: y0 + float64(r)*spacing})
		}
	}
	return markers
}

// Shift returns markers translated by (dx, dy).
func Shift(markers []Marker, dx, dy float64) []Marker {
	out := make([]Marker, len(markers))
	for i, m := range markers {
		out[i] = Marker{X: m.X + dx, Y: m.Y + dy}
	}
	return out
}
