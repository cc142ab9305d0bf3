// Package app runs the tactile pipeline: a producer goroutine turning sensor
// frames into samples, and a consumer loop classifying them and driving the
// input state machine.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/tactipad/internal/action"
	"github.com/ayusman/tactipad/internal/gesture"
	"github.com/ayusman/tactipad/internal/sensor"
)

// DefaultPeriod is one cycle per second for both loops.
const DefaultPeriod = time.Second

// ErrAlreadyRunning is returned by Run when the App is already running or has run.
var ErrAlreadyRunning = errors.New("app already running")

// Options configures an App.
type Options struct {
	Device   sensor.Device
	Injector action.Injector

	Mapping           action.Mapping
	Supervisor        action.Supervisor
	Thresholds        gesture.Thresholds
	DebounceThreshold float64
	Period            time.Duration

	// Recorder, if set, receives calibrations, samples and events.
	Recorder Recorder
	// StatusOutput, if set, receives one status line per cycle.
	StatusOutput io.Writer
	Logger       *slog.Logger
}

// App is the main application that connects the sensor to the injector.
type App struct {
	device            sensor.Device
	machine           *action.Machine
	classifier        *gesture.Classifier
	debounceThreshold float64
	period            Period
	shared            *Shared
	recorder          Recorder
	reporter          *Reporter
	logger            *slog.Logger

	enabled atomic.Bool
	started atomic.Bool
	status  atomic.Pointer[Status]

	mu        sync.RWMutex
	observers []Observer

	// consumer-owned
	previous *gesture.Sample
	cycle    uint64
}

// New creates an App. Injection starts enabled.
func New(opts Options) (*App, error) {
	if opts.Device == nil {
		return nil, errors.New("app: device is required")
	}
	if opts.Injector == nil {
		return nil, errors.New("app: injector is required")
	}
	if err := opts.Mapping.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if opts.DebounceThreshold < 0 {
		return nil, fmt.Errorf("app: negative debounce threshold %v", opts.DebounceThreshold)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	period := opts.Period
	if period == 0 {
		period = DefaultPeriod
	}

	a := &App{
		device:            opts.Device,
		machine:           action.NewMachine(opts.Mapping, opts.Supervisor, opts.Injector, logger),
		classifier:        gesture.NewClassifier(opts.Thresholds),
		debounceThreshold: opts.DebounceThreshold,
		period:            NewPeriod(period),
		shared:            NewShared(),
		recorder:          opts.Recorder,
		reporter:          NewReporter(opts.StatusOutput),
		logger:            logger,
	}
	a.enabled.Store(true)
	return a, nil
}

// SetEnabled turns injection on or off. While off, every cycle steps the
// machine with None, so held input is released.
func (a *App) SetEnabled(enabled bool) {
	if a.enabled.Swap(enabled) != enabled {
		a.logger.Info("injection toggled", "enabled", enabled)
	}
}

// Enabled reports whether injection is on.
func (a *App) Enabled() bool {
	return a.enabled.Load()
}

// Status returns the snapshot from the last completed cycle.
func (a *App) Status() Status {
	if s := a.status.Load(); s != nil {
		return *s
	}
	return Status{
		Enabled:    a.Enabled(),
		Calibrated: a.shared.Calibrator().Captured(),
	}
}

// OnCycle registers an observer called after every consumer cycle.
func (a *App) OnCycle(fn Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

// Machine returns the input state machine.
func (a *App) Machine() *action.Machine {
	return a.machine
}

// Shared returns the state shared between the loops.
func (a *App) Shared() *Shared {
	return a.shared
}

// Run connects the device and runs both loops until ctx ends or either
// loop fails. Cancellation of ctx is a clean exit and returns nil.
//
// Before returning, on every path including panics, Run releases every
// mapped key and button, stops the producer and waits for it, and releases
// the device exactly once. Cleanup failures are logged and never replace
// the error being returned.
func (a *App) Run(ctx context.Context) (err error) {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	runCtx, cancelRun := context.WithCancelCause(ctx)
	var (
		done    chan struct{}
		release sync.Once
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("consumer panic: %v", r)
		}
		a.cleanup(cancelRun, done, &release)
	}()

	if err := a.device.Connect(); err != nil {
		return fmt.Errorf("connect sensor: %w", err)
	}
	a.banner()

	done = make(chan struct{})
	go func() {
		defer close(done)
		if err := a.produce(runCtx); err != nil {
			cancelRun(err)
		}
	}()

	for {
		started := time.Now()
		if err := a.consume(started); err != nil {
			return err
		}
		if a.period.Wait(runCtx, started) != nil {
			break
		}
	}

	if ctx.Err() != nil {
		a.logger.Info("interrupted")
		return nil
	}
	return context.Cause(runCtx)
}

func (a *App) cleanup(cancelRun context.CancelCauseFunc, done <-chan struct{}, release *sync.Once) {
	if err := a.machine.Shutdown(); err != nil {
		a.logger.Error("failed to release input", "error", err)
	} else {
		a.logger.Info("all keys and buttons released")
	}

	cancelRun(context.Canceled)
	if done != nil {
		<-done
	}

	release.Do(func() {
		if err := a.device.Release(); err != nil {
			a.logger.Error("failed to release sensor", "error", err)
			return
		}
		a.logger.Info("sensor released")
	})
}

func (a *App) banner() {
	m := a.machine.Mapping()
	keys := make([]any, 0, 2*int(gesture.NumLabels))
	for l := gesture.Label(0); l < gesture.NumLabels; l++ {
		if k, ok := m.Key(l); ok {
			keys = append(keys, l.String(), k)
		} else if b, ok := m.Button(l); ok {
			keys = append(keys, l.String(), "mouse:"+b)
		}
	}
	th := a.classifier.Thresholds()
	a.logger.Info("sensor connected, sampling",
		"period", a.period.Interval(),
		"horizontal", th.Horizontal,
		"vertical", th.Vertical,
		"press", th.Press)
	a.logger.Info("input mapping", keys...)
}

// consume runs one consumer cycle.
func (a *App) consume(now time.Time) error {
	current, ok := a.shared.Latest()
	if !ok {
		return nil
	}

	classified := a.classifier.Classify(current, a.previous)
	label := classified
	enabled := a.Enabled()
	if !enabled {
		label = gesture.None
	}

	tr, stepErr := a.machine.Step(label, now)

	if a.recorder != nil {
		if err := a.recorder.RecordCycle(current, classified, tr.Events); err != nil {
			a.logger.Warn("failed to record cycle", "error", err)
		}
	}

	if err := a.reporter.Report(now, current, a.previous, classified); err != nil {
		a.logger.Warn("failed to write status", "error", err)
	}

	a.cycle++
	st := &Status{
		Cycle:      a.cycle,
		At:         now,
		Sample:     &current,
		Previous:   a.previous,
		Label:      label,
		Classified: classified,
		Forced:     tr.Forced,
		Events:     tr.Events,
		Held:       tr.State,
		Enabled:    enabled,
		Calibrated: a.shared.Calibrator().Captured(),
	}
	a.status.Store(st)
	a.notify(*st)

	a.previous = &current
	if stepErr != nil {
		return fmt.Errorf("inject %s: %w", label, stepErr)
	}
	return nil
}

func (a *App) notify(st Status) {
	a.mu.RLock()
	observers := a.observers
	a.mu.RUnlock()

	for _, fn := range observers {
		fn(st)
	}
}
