// Package detector finds the printed contact markers on the sensor gel and
// keeps them in a stable order from frame to frame.
package detector

import "gocv.io/x/gocv"

// Marker is the sub-pixel centre of one contact marker.
type Marker struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detector defines the interface for marker detection implementations.
type Detector interface {
	// Detect returns the markers visible in frame in no particular order.
	Detect(frame *gocv.Mat) ([]Marker, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for marker detection.
type Config struct {
	// MinArea and MaxArea bound the blob area in pixels.
	MinArea float64
	MaxArea float64

	// DarkMarkers selects dark dots on a bright gel (the common case).
	DarkMarkers bool
}

// DefaultConfig returns a Config suited to a 640x480 gel image.
func DefaultConfig() Config {
	return Config{
		MinArea:     10,
		MaxArea:     2000,
		DarkMarkers: true,
	}
}
