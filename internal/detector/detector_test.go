package detector

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

const epsilon = 1e-9

func TestTrack(t *testing.T) {
	previous := []Marker{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 90, Y: 10}}

	t.Run("small shift follows detections", func(t *testing.T) {
		detected := []Marker{{X: 92, Y: 11}, {X: 12, Y: 11}, {X: 52, Y: 11}}
		got := Track(previous, detected, 5)
		want := []Marker{{X: 12, Y: 11}, {X: 52, Y: 11}, {X: 92, Y: 11}}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("marker %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("missing detection keeps last position", func(t *testing.T) {
		detected := []Marker{{X: 11, Y: 10}, {X: 91, Y: 10}}
		got := Track(previous, detected, 5)
		if got[1] != previous[1] {
			t.Errorf("unmatched marker moved to %+v", got[1])
		}
		if got[0].X != 11 || got[2].X != 91 {
			t.Errorf("matched markers = %+v", got)
		}
	})

	t.Run("detection outside radius is ignored", func(t *testing.T) {
		got := Track(previous, []Marker{{X: 30, Y: 10}}, 5)
		for i := range previous {
			if got[i] != previous[i] {
				t.Errorf("marker %d moved to %+v", i, got[i])
			}
		}
	})

	t.Run("closest pair wins a contested detection", func(t *testing.T) {
		got := Track([]Marker{{X: 0, Y: 0}, {X: 4, Y: 0}}, []Marker{{X: 3, Y: 0}}, 5)
		if got[1].X != 3 || got[0].X != 0 {
			t.Errorf("Track() = %+v", got)
		}
	})
}

func TestTracker(t *testing.T) {
	tr := NewTracker(5)
	origin := GridMarkers(2, 2, 10, 10, 20)
	tr.Reset(origin)

	got := tr.Update(Shift(origin, 1, -1))
	for i := range origin {
		if math.Abs(got[i].X-origin[i].X-1) > epsilon || math.Abs(got[i].Y-origin[i].Y+1) > epsilon {
			t.Errorf("marker %d = %+v, want shifted origin %+v", i, got[i], origin[i])
		}
	}
	if o := tr.Origin(); o[0] != origin[0] {
		t.Errorf("Origin() changed: %+v", o)
	}
	if c := tr.Current(); c[3] != got[3] {
		t.Errorf("Current() = %+v, want %+v", c, got)
	}
}

func TestSortMarkers(t *testing.T) {
	m := []Marker{{X: 5, Y: 2}, {X: 1, Y: 2}, {X: 9, Y: 1}}
	SortMarkers(m)
	want := []Marker{{X: 9, Y: 1}, {X: 1, Y: 2}, {X: 5, Y: 2}}
	for i := range want {
		if m[i] != want[i] {
			t.Fatalf("SortMarkers() = %+v, want %+v", m, want)
		}
	}
}

func TestMockDetector(t *testing.T) {
	first := []Marker{{X: 1, Y: 1}}
	second := []Marker{{X: 2, Y: 2}}
	m := NewMockDetector(first, second)

	for i, want := range [][]Marker{first, second, second} {
		got, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(got) != 1 || got[0] != want[0] {
			t.Errorf("call %d: Detect() = %+v, want %+v", i, got, want)
		}
	}

	boom := errors.New("boom")
	m.SetError(boom)
	if _, err := m.Detect(nil); !errors.Is(err, boom) {
		t.Errorf("Detect() error = %v, want %v", err, boom)
	}

	m.Close()
	if !m.Closed() {
		t.Error("Closed() = false after Close()")
	}
}

func TestBlobDetector_FindsDots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test")
	}

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer img.Close()

	centres := []image.Point{{X: 40, Y: 30}, {X: 120, Y: 30}, {X: 40, Y: 90}, {X: 120, Y: 90}}
	for _, c := range centres {
		gocv.Circle(&img, c, 6, color.RGBA{0, 0, 0, 0}, -1)
	}

	d := NewBlobDetector(DefaultConfig())
	defer d.Close()

	markers, err := d.Detect(&img)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(markers) != len(centres) {
		t.Fatalf("Detect() found %d markers, want %d", len(markers), len(centres))
	}
	for _, c := range centres {
		found := false
		for _, m := range markers {
			if math.Abs(m.X-float64(c.X)) <= 1.5 && math.Abs(m.Y-float64(c.Y)) <= 1.5 {
				found = true
			}
		}
		if !found {
			t.Errorf("no marker near %v in %+v", c, markers)
		}
	}
}

func TestBlobDetector_EmptyFrame(t *testing.T) {
	d := NewBlobDetector(DefaultConfig())
	defer d.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := d.Detect(&empty); err == nil {
		t.Error("Detect() should fail on an empty frame")
	}
}
