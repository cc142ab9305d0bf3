package app

import (
	"fmt"
	"io"
	"time"

	"github.com/ayusman/tactipad/internal/gesture"
)

// Reporter writes one status line per consumer cycle.
type Reporter struct {
	w io.Writer
}

// NewReporter returns a Reporter writing to w. A nil w discards lines.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report writes the line for current, with offsets from previous when known.
func (r *Reporter) Report(now time.Time, current gesture.Sample, previous *gesture.Sample, label gesture.Label) error {
	if r == nil || r.w == nil {
		return nil
	}
	_, err := io.WriteString(r.w, FormatStatus(now, current, previous, label)+"\n")
	return err
}

// FormatStatus renders a status line:
//
//	2006-01-02 15:04:05 - X=1.000000, Y=2.000000, Z=3.000000 | dx=------, dy=------, dz=------ | direction=none
func FormatStatus(now time.Time, current gesture.Sample, previous *gesture.Sample, label gesture.Label) string {
	dx, dy, dz := "------", "------", "------"
	if previous != nil {
		dx = formatValue(current.X - previous.X)
		dy = formatValue(current.Y - previous.Y)
		dz = formatValue(current.Z - previous.Z)
	}
	return fmt.Sprintf("%s - X=%s, Y=%s, Z=%s | dx=%s, dy=%s, dz=%s | direction=%s",
		now.Format(time.DateTime),
		formatValue(current.X), formatValue(current.Y), formatValue(current.Z),
		dx, dy, dz, label)
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
