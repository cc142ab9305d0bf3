// Package sensor connects to the tactile sensor and exposes, per frame, the
// tracked contact markers and a depth map.
package sensor

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/ayusman/tactipad/internal/detector"
)

var (
	// ErrDeviceNotFound is returned by Connect when no sensor hardware answers.
	ErrDeviceNotFound = errors.New("tactile sensor not found")
	// ErrNotConnected is returned when a device is used before Connect or after Release.
	ErrNotConnected = errors.New("tactile sensor not connected")
	// ErrNoMarkers is returned when calibration sees no markers on the gel.
	ErrNoMarkers = errors.New("no markers detected during calibration")
)

// Device is a tactile sensor. Methods other than Preview are called from
// the acquisition goroutine only.
type Device interface {
	// Connect opens the hardware and starts calibration.
	Connect() error

	// IsCalibrated reports whether the unloaded reference has been captured.
	IsCalibrated() bool

	// Frame reads the next raw frame. The caller closes it.
	Frame() (*gocv.Mat, error)

	// TrackAndReconstruct updates markers and depth from frame.
	TrackAndReconstruct(frame *gocv.Mat) error

	// DepthMap returns the latest single-channel depth map. It is owned by
	// the device and valid until the next TrackAndReconstruct.
	DepthMap() *gocv.Mat

	// CurrentMarkers returns the tracked markers, ordered like OriginMarkers.
	CurrentMarkers() []detector.Marker

	// OriginMarkers returns the markers at calibration time.
	OriginMarkers() []detector.Marker

	// Release frees the hardware. It is safe to call more than once.
	Release() error
}

// Previewer renders the latest depth map as an 8-bit image for display.
// It may be called from any goroutine. The caller closes the result.
type Previewer interface {
	Preview() (*gocv.Mat, error)
}
