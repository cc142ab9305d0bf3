package gesture

import (
	"errors"
	"fmt"
	"math"
)

// Default classification thresholds.
const (
	DefaultHorizontalThreshold = 0.4
	DefaultVerticalThreshold   = 0.3
)

// DefaultPressThresholds are the depth deltas for Press1, Press2 and Press3.
var DefaultPressThresholds = [3]float64{50, 70, 100}

// Thresholds configures the Classifier.
type Thresholds struct {
	Horizontal float64
	Vertical   float64
	Press      [3]float64
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Horizontal: DefaultHorizontalThreshold,
		Vertical:   DefaultVerticalThreshold,
		Press:      DefaultPressThresholds,
	}
}

// Validate checks that the thresholds are positive and the press tiers ascend.
func (t Thresholds) Validate() error {
	if t.Horizontal <= 0 || math.IsNaN(t.Horizontal) {
		return errors.New("horizontal threshold must be > 0")
	}
	if t.Vertical <= 0 || math.IsNaN(t.Vertical) {
		return errors.New("vertical threshold must be > 0")
	}
	if t.Press[0] <= 0 {
		return errors.New("press thresholds must be > 0")
	}
	for i := 1; i < len(t.Press); i++ {
		if t.Press[i] <= t.Press[i-1] {
			return fmt.Errorf("press thresholds must be strictly ascending, got %v", t.Press)
		}
	}
	return nil
}

// Classifier maps the change between two consecutive samples to a Label.
// It holds no state between calls.
type Classifier struct {
	th Thresholds
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

// Thresholds returns the thresholds in use.
func (c *Classifier) Thresholds() Thresholds {
	return c.th
}

// Classify compares current with previous. Horizontal motion wins over
// vertical motion, which wins over press depth. A nil previous yields
// Uninitialized.
func (c *Classifier) Classify(current Sample, previous *Sample) Label {
	if previous == nil {
		return Uninitialized
	}

	dx := current.X - previous.X
	dy := current.Y - previous.Y
	dz := current.Z - previous.Z

	switch {
	case math.Abs(dx) > c.th.Horizontal:
		if dx > 0 {
			return Left
		}
		return Right
	case math.Abs(dy) > c.th.Vertical:
		if dy > 0 {
			return Forward
		}
		return Backward
	case dz > c.th.Press[2]:
		return Press3
	case dz > c.th.Press[1]:
		return Press2
	case dz > c.th.Press[0]:
		return Press1
	}

	return None
}
