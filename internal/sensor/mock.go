package sensor

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/tactipad/internal/detector"
)

// Mock depth maps are this size.
const (
	MockRows = 120
	MockCols = 160
)

// MockStep is one scripted frame.
type MockStep struct {
	// Calibrated is what IsCalibrated reports after this frame is read.
	Calibrated bool
	// Markers are the tracked positions; they must match the origin count.
	Markers []detector.Marker
	// Depth holds one value in [0, 255] per marker.
	Depth []float64
	// Err, if set, is returned by Frame instead of a frame.
	Err error
}

// MockDevice replays a script of steps, repeating the last one. Its depth
// maps contain one pixel at 255 and one at 0, so normalization leaves the
// scripted depth values unchanged.
type MockDevice struct {
	mu         sync.Mutex
	origin     []detector.Marker
	steps      []MockStep
	index      int
	current    MockStep
	depth      gocv.Mat
	connectErr error
	releaseErr error
	connected  bool
	calibrated bool
	released   int
	frames     int
}

// NewMockDevice creates a MockDevice with the given origin and script.
func NewMockDevice(origin []detector.Marker, steps ...MockStep) *MockDevice {
	return &MockDevice{
		origin: append([]detector.Marker(nil), origin...),
		steps:  steps,
		depth:  gocv.NewMat(),
	}
}

// FailConnect makes Connect return err.
func (m *MockDevice) FailConnect(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectErr = err
}

// FailRelease makes Release return err.
func (m *MockDevice) FailRelease(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseErr = err
}

func (m *MockDevice) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	return nil
}

func (m *MockDevice) IsCalibrated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calibrated
}

// Frame advances the script.
func (m *MockDevice) Frame() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected || m.released > 0 {
		return nil, ErrNotConnected
	}
	if len(m.steps) == 0 {
		return nil, errors.New("mock device has no script")
	}

	step := m.steps[m.index]
	if m.index < len(m.steps)-1 {
		m.index++
	}
	if step.Err != nil {
		return nil, step.Err
	}

	m.current = step
	m.calibrated = step.Calibrated
	m.frames++

	frame := gocv.NewMatWithSize(MockRows, MockCols, gocv.MatTypeCV8UC1)
	return &frame, nil
}

// TrackAndReconstruct renders the current step's depth map.
func (m *MockDevice) TrackAndReconstruct(frame *gocv.Mat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected || m.released > 0 {
		return ErrNotConnected
	}

	depth := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), MockRows, MockCols, gocv.MatTypeCV32F)
	depth.SetFloatAt(MockRows-1, MockCols-1, 255)
	for i, mk := range m.current.Markers {
		if i >= len(m.current.Depth) {
			break
		}
		x := clip(int(mk.X), MockCols-1)
		y := clip(int(mk.Y), MockRows-1)
		depth.SetFloatAt(y, x, float32(m.current.Depth[i]))
	}

	m.depth.Close()
	m.depth = depth
	return nil
}

func (m *MockDevice) DepthMap() *gocv.Mat {
	return &m.depth
}

func (m *MockDevice) CurrentMarkers() []detector.Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]detector.Marker(nil), m.current.Markers...)
}

func (m *MockDevice) OriginMarkers() []detector.Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]detector.Marker(nil), m.origin...)
}

// Preview returns the normalized depth map.
func (m *MockDevice) Preview() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released > 0 {
		return nil, ErrNotConnected
	}
	if m.depth.Empty() {
		return nil, errors.New("no depth map yet")
	}
	norm := NormalizeDepth(&m.depth)
	return &norm, nil
}

// Release counts calls; only the first frees the depth map.
func (m *MockDevice) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.released++
	if m.released == 1 {
		m.depth.Close()
	}
	return m.releaseErr
}

// Released returns how many times Release was called.
func (m *MockDevice) Released() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// Frames returns how many frames have been delivered.
func (m *MockDevice) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}
