// Package action drives key and mouse-button holds from gesture labels.
package action

import (
	"fmt"
	"strings"

	"github.com/ayusman/tactipad/internal/gesture"
)

// Mouse buttons understood by the injectors.
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Mapping binds labels to a key or a mouse button. An empty entry means the
// label is unmapped. A label may appear in at most one of the two tables.
type Mapping struct {
	Keys    [gesture.NumLabels]string
	Buttons [gesture.NumLabels]string
}

// DefaultMapping returns the arrow-key layout with all press tiers on space.
func DefaultMapping() Mapping {
	return Mapping{
		Keys: [gesture.NumLabels]string{
			gesture.Forward:  "up",
			gesture.Backward: "down",
			gesture.Left:     "left",
			gesture.Right:    "right",
			gesture.Press1:   "space",
			gesture.Press2:   "space",
			gesture.Press3:   "space",
		},
	}
}

// Validate checks that the tables are disjoint, that only actionable labels
// are bound, and that buttons are known.
func (m Mapping) Validate() error {
	for l := gesture.Label(0); l < gesture.NumLabels; l++ {
		key, button := m.Keys[l], m.Buttons[l]
		if key == "" && button == "" {
			continue
		}
		if !l.Actionable() {
			return fmt.Errorf("label %s cannot be mapped", l)
		}
		if key != "" && button != "" {
			return fmt.Errorf("label %s is mapped to both key %q and button %q", l, key, button)
		}
		if strings.TrimSpace(key) != key || strings.TrimSpace(button) != button {
			return fmt.Errorf("label %s: mapping has surrounding whitespace", l)
		}
		if button != "" && !validButton(button) {
			return fmt.Errorf("label %s: unknown mouse button %q", l, button)
		}
	}
	return nil
}

// Key returns the key bound to l, if any.
func (m Mapping) Key(l gesture.Label) (string, bool) {
	if l < 0 || l >= gesture.NumLabels || m.Keys[l] == "" {
		return "", false
	}
	return m.Keys[l], true
}

// Button returns the mouse button bound to l, if any.
func (m Mapping) Button(l gesture.Label) (string, bool) {
	if l < 0 || l >= gesture.NumLabels || m.Buttons[l] == "" {
		return "", false
	}
	return m.Buttons[l], true
}

// DistinctKeys returns each mapped key once, in label order.
func (m Mapping) DistinctKeys() []string {
	return distinct(m.Keys[:])
}

// DistinctButtons returns each mapped button once, in label order.
func (m Mapping) DistinctButtons() []string {
	return distinct(m.Buttons[:])
}

func distinct(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func validButton(b string) bool {
	switch b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return true
	}
	return false
}
