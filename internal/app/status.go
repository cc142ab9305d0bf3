package app

import (
	"time"

	"github.com/ayusman/tactipad/internal/action"
	"github.com/ayusman/tactipad/internal/gesture"
)

// Status is a snapshot taken at the end of a consumer cycle.
type Status struct {
	Cycle      uint64          `json:"cycle"`
	At         time.Time       `json:"at"`
	Sample     *gesture.Sample `json:"sample,omitempty"`
	Previous   *gesture.Sample `json:"previous,omitempty"`
	Label      gesture.Label   `json:"label"`
	Classified gesture.Label   `json:"classified"`
	Forced     string          `json:"forced,omitempty"`
	Events     []action.Event  `json:"events,omitempty"`
	Held       action.State    `json:"held"`
	Enabled    bool            `json:"enabled"`
	Calibrated bool            `json:"calibrated"`
}

// Observer is called synchronously from the consumer after every cycle. It
// must not block.
type Observer func(Status)

// Recorder persists what the pipeline does. Errors are logged and do not
// stop the run.
type Recorder interface {
	RecordCalibration(reference []gesture.ContactPoint, at time.Time) error
	RecordCycle(sample gesture.Sample, label gesture.Label, events []action.Event) error
}
