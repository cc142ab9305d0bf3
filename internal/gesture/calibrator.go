package gesture

import "sync"

// Calibrator holds the origin reference that every later frame is
// compared against. The reference is captured once and never replaced.
type Calibrator struct {
	mu       sync.RWMutex
	origin   []ContactPoint
	captured bool
}

// NewCalibrator returns an empty Calibrator.
func NewCalibrator() *Calibrator {
	return &Calibrator{}
}

// Capture stores a copy of points as the origin reference. It returns true
// only for the call that captured; later calls leave the reference alone.
func (c *Calibrator) Capture(points []ContactPoint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.captured {
		return false
	}

	c.origin = append([]ContactPoint(nil), points...)
	c.captured = true
	return true
}

// Captured reports whether a reference exists.
func (c *Calibrator) Captured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.captured
}

// Reference returns a copy of the origin reference.
func (c *Calibrator) Reference() ([]ContactPoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.captured {
		return nil, false
	}
	return append([]ContactPoint(nil), c.origin...), true
}
