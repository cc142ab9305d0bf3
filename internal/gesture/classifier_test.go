package gesture

import "testing"

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		name     string
		previous Sample
		current  Sample
		want     Label
	}{
		{"identical samples", Sample{X: 1, Y: 2, Z: 3}, Sample{X: 1, Y: 2, Z: 3}, None},
		{"positive dx is left", Sample{}, Sample{X: 0.5}, Left},
		{"negative dx is right", Sample{}, Sample{X: -0.5}, Right},
		{"dx at threshold is not horizontal", Sample{}, Sample{X: 0.4}, None},
		{"positive dy is forward", Sample{}, Sample{Y: 0.31}, Forward},
		{"negative dy is backward", Sample{}, Sample{Y: -0.31}, Backward},
		{"press tier 1", Sample{Z: 10}, Sample{Z: 61}, Press1},
		{"press tier 2", Sample{Z: 10}, Sample{Z: 81}, Press2},
		{"press tier 3", Sample{Z: 10}, Sample{Z: 111}, Press3},
		{"press at threshold is none", Sample{Z: 0}, Sample{Z: 50}, None},
		{"release depth is none", Sample{Z: 200}, Sample{Z: 0}, None},
		{"horizontal beats press", Sample{}, Sample{X: 0.5, Z: 500}, Left},
		{"horizontal beats vertical", Sample{}, Sample{X: -0.5, Y: 5}, Right},
		{"vertical beats press", Sample{}, Sample{Y: -1, Z: 500}, Backward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.previous
			if got := c.Classify(tt.current, &prev); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_NoPrevious(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	if got := c.Classify(Sample{X: 10}, nil); got != Uninitialized {
		t.Errorf("Classify(nil previous) = %v, want %v", got, Uninitialized)
	}
}

func TestThresholds_Validate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("DefaultThresholds().Validate() error = %v", err)
	}

	bad := []Thresholds{
		{Horizontal: 0, Vertical: 0.3, Press: DefaultPressThresholds},
		{Horizontal: 0.4, Vertical: -1, Press: DefaultPressThresholds},
		{Horizontal: 0.4, Vertical: 0.3, Press: [3]float64{50, 50, 100}},
		{Horizontal: 0.4, Vertical: 0.3, Press: [3]float64{0, 70, 100}},
	}
	for i, th := range bad {
		if err := th.Validate(); err == nil {
			t.Errorf("case %d: Validate() should fail for %+v", i, th)
		}
	}
}

func TestParseLabel(t *testing.T) {
	for l := Label(0); l < NumLabels; l++ {
		got, err := ParseLabel(l.String())
		if err != nil {
			t.Fatalf("ParseLabel(%q) error = %v", l.String(), err)
		}
		if got != l {
			t.Errorf("ParseLabel(%q) = %v, want %v", l.String(), got, l)
		}
	}
	if _, err := ParseLabel("sideways"); err == nil {
		t.Error("ParseLabel(\"sideways\") should fail")
	}
}

func TestLabel_Actionable(t *testing.T) {
	if None.Actionable() || Uninitialized.Actionable() {
		t.Error("None and Uninitialized should not be actionable")
	}
	for _, l := range []Label{Forward, Backward, Left, Right, Press1, Press2, Press3} {
		if !l.Actionable() {
			t.Errorf("%v should be actionable", l)
		}
	}
}
