// Package gesture turns tracked contact points into directional labels.
package gesture

import "fmt"

// Label is the discrete classification of one consumer cycle.
type Label int

const (
	Uninitialized Label = iota
	Forward
	Backward
	Left
	Right
	Press1
	Press2
	Press3
	None

	// NumLabels bounds tables indexed by Label.
	NumLabels
)

var labelNames = [NumLabels]string{
	Uninitialized: "uninitialized",
	Forward:       "forward",
	Backward:      "backward",
	Left:          "left",
	Right:         "right",
	Press1:        "press1",
	Press2:        "press2",
	Press3:        "press3",
	None:          "none",
}

func (l Label) String() string {
	if l < 0 || l >= NumLabels {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return labelNames[l]
}

// Actionable reports whether the label represents a gesture rather than
// the absence of one.
func (l Label) Actionable() bool {
	return l != None && l != Uninitialized && l >= 0 && l < NumLabels
}

// ParseLabel returns the label with the given lowercase name.
func ParseLabel(s string) (Label, error) {
	for i, name := range labelNames {
		if name == s {
			return Label(i), nil
		}
	}
	return None, fmt.Errorf("unknown label %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(b []byte) error {
	parsed, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
