package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/tactipad/internal/action"
	"github.com/ayusman/tactipad/internal/app"
	"github.com/ayusman/tactipad/internal/capture"
	"github.com/ayusman/tactipad/internal/detector"
	"github.com/ayusman/tactipad/internal/fixtures"
	"github.com/ayusman/tactipad/internal/gesture"
	"github.com/ayusman/tactipad/internal/inject"
	"github.com/ayusman/tactipad/internal/sensor"
	"github.com/ayusman/tactipad/internal/server"
	"github.com/ayusman/tactipad/internal/store"
)

var origin = detector.GridMarkers(3, 3, 50, 30, 25)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newApp(t *testing.T, dev sensor.Device, inj action.Injector, rec app.Recorder) *app.App {
	t.Helper()
	a, err := app.New(app.Options{
		Device:            dev,
		Injector:          inj,
		Mapping:           action.DefaultMapping(),
		Supervisor:        action.DefaultSupervisor(),
		Thresholds:        gesture.DefaultThresholds(),
		DebounceThreshold: gesture.DefaultDebounceThreshold,
		Period:            time.Millisecond,
		Recorder:          rec,
		Logger:            discardLogger(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	return a
}

// runUntil runs a until inj has made every call in want, then cancels it.
func runUntil(t *testing.T, a *app.App, inj *inject.Recorder, want ...string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.OnCycle(func(app.Status) {
		for _, call := range want {
			if inj.Count(call) == 0 {
				return
			}
		}
		cancel()
	})

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, call := range want {
		if inj.Count(call) == 0 {
			t.Fatalf("%q never happened; calls = %v", call, inj.Calls())
		}
	}
}

func assertReleased(t *testing.T, inj *inject.Recorder) {
	t.Helper()
	if held := inj.Held(); len(held) != 0 {
		t.Errorf("still held after Run: %v", held)
	}
	for _, key := range action.DefaultMapping().DistinctKeys() {
		if inj.Count("keyup "+key) == 0 {
			t.Errorf("key %q never released", key)
		}
	}
}

func TestE2E_MockPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	rec, err := s.StartSession(&store.Session{Sensor: "mock", Injector: "recorder"}, true)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	steps := []sensor.MockStep{{Calibrated: false}}
	zero := make([]float64, len(origin))
	for i := 0; i < 500; i++ {
		steps = append(steps,
			sensor.MockStep{Calibrated: true, Markers: origin, Depth: zero},
			sensor.MockStep{Calibrated: true, Markers: detector.Shift(origin, 3, 0), Depth: zero},
		)
	}
	dev := sensor.NewMockDevice(origin, steps...)
	inj := inject.NewRecorder()
	a := newApp(t, dev, inj, rec)

	live := server.NewLiveHandler(discardLogger())
	a.OnCycle(live.Publish)
	ts := httptest.NewServer(server.New(server.Config{Store: s, App: a, Live: live, Logger: discardLogger()}))
	defer ts.Close()

	runUntil(t, a, inj, "keydown left", "keydown right")
	assertReleased(t, inj)
	if n := dev.Released(); n != 1 {
		t.Errorf("device released %d times, want 1", n)
	}
	if err := rec.End("done"); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	t.Run("StatusAfterRun", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/status")
		if err != nil {
			t.Fatalf("GET /api/status error = %v", err)
		}
		defer resp.Body.Close()

		var st struct {
			Cycle      uint64 `json:"cycle"`
			Calibrated bool   `json:"calibrated"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if st.Cycle == 0 || !st.Calibrated {
			t.Errorf("status = %+v, want cycles and calibrated", st)
		}
	})

	t.Run("RecordedEvents", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/sessions/" + rec.SessionID() + "/events")
		if err != nil {
			t.Fatalf("GET events error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var body struct {
			Events []struct {
				Kind string `json:"kind"`
				Key  string `json:"key"`
			} `json:"events"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode events: %v", err)
		}

		var presses, releases int
		for _, e := range body.Events {
			switch e.Kind {
			case "press":
				presses++
			case "release":
				releases++
			}
		}
		if presses == 0 || presses != releases {
			t.Errorf("presses = %d, releases = %d; want a balanced non-empty log", presses, releases)
		}
	})

	t.Run("SessionEnded", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/sessions/" + rec.SessionID())
		if err != nil {
			t.Fatalf("GET session error = %v", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(data), `"end_reason":"done"`) {
			t.Errorf("session = %s, want end_reason done", data)
		}
	})
}

func TestE2E_CameraPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	const warmup = 3
	frames := fixtures.Swipe(origin, warmup, 50, 10)
	defer fixtures.Close(frames)

	cam := capture.NewMockCamera(frames, true)
	dev := sensor.NewCameraDevice(sensor.CameraOptions{
		CameraIDs:         []int{0},
		CalibrationFrames: warmup,
		Detector:          detector.DefaultConfig(),
		Logger:            discardLogger(),
		OpenCamera: func(int, capture.Options) capture.Camera {
			return cam
		},
	})

	inj := inject.NewRecorder()
	a := newApp(t, dev, inj, nil)

	var reference int
	a.OnCycle(func(st app.Status) {
		if st.Calibrated && reference == 0 {
			reference = len(dev.OriginMarkers())
		}
	})

	runUntil(t, a, inj, "keydown left", "keydown right")
	assertReleased(t, inj)

	if reference != len(origin) {
		t.Errorf("calibrated with %d markers, want %d", reference, len(origin))
	}
	if cam.IsOpen() {
		t.Error("camera still open after Run")
	}
}
