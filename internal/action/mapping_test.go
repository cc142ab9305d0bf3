package action

import (
	"reflect"
	"testing"

	"github.com/ayusman/tactipad/internal/gesture"
)

func TestMapping_Validate(t *testing.T) {
	if err := DefaultMapping().Validate(); err != nil {
		t.Fatalf("DefaultMapping().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(m *Mapping)
	}{
		{"label in both tables", func(m *Mapping) { m.Buttons[gesture.Left] = ButtonLeft }},
		{"none is mapped", func(m *Mapping) { m.Keys[gesture.None] = "x" }},
		{"uninitialized is mapped", func(m *Mapping) { m.Buttons[gesture.Uninitialized] = ButtonLeft }},
		{"unknown button", func(m *Mapping) { m.Keys[gesture.Press1] = ""; m.Buttons[gesture.Press1] = "thumb" }},
		{"whitespace key", func(m *Mapping) { m.Keys[gesture.Left] = " left" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMapping()
			tt.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestMapping_Distinct(t *testing.T) {
	m := DefaultMapping()
	if got, want := m.DistinctKeys(), []string{"up", "down", "left", "right", "space"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctKeys() = %v, want %v", got, want)
	}
	if got := m.DistinctButtons(); len(got) != 0 {
		t.Errorf("DistinctButtons() = %v, want none", got)
	}
}

func TestMapping_Lookup(t *testing.T) {
	m := DefaultMapping()
	if k, ok := m.Key(gesture.Forward); !ok || k != "up" {
		t.Errorf("Key(Forward) = %q, %v", k, ok)
	}
	if _, ok := m.Key(gesture.None); ok {
		t.Error("Key(None) should be unmapped")
	}
	if _, ok := m.Button(gesture.Forward); ok {
		t.Error("Button(Forward) should be unmapped")
	}
	if _, ok := m.Key(gesture.Label(99)); ok {
		t.Error("Key(out of range) should be unmapped")
	}
}
