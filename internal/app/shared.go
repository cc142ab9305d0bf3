package app

import (
	"sync/atomic"

	"github.com/ayusman/tactipad/internal/gesture"
)

// Shared is the state the producer and consumer both see: the latest
// published sample and the origin calibrator. Everything else belongs to
// one side.
type Shared struct {
	latest atomic.Pointer[gesture.Sample]
	calib  *gesture.Calibrator
}

// NewShared returns an empty Shared.
func NewShared() *Shared {
	return &Shared{calib: gesture.NewCalibrator()}
}

// Publish replaces the latest sample. The stored value is never mutated.
func (s *Shared) Publish(sample gesture.Sample) {
	s.latest.Store(&sample)
}

// Latest returns the most recently published sample.
func (s *Shared) Latest() (gesture.Sample, bool) {
	p := s.latest.Load()
	if p == nil {
		return gesture.Sample{}, false
	}
	return *p, true
}

// Calibrator returns the origin calibrator.
func (s *Shared) Calibrator() *gesture.Calibrator {
	return s.calib
}
