package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/tactipad/internal/gesture"
	"github.com/ayusman/tactipad/internal/sensor"
)

// produce polls the device at the sample period and publishes one
// aggregated sample per calibrated frame. It returns nil when ctx ends.
func (a *App) produce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("producer panic: %v", r)
		}
	}()

	for ctx.Err() == nil {
		started := time.Now()
		if err := a.acquire(started); err != nil {
			return err
		}
		if a.period.Wait(ctx, started) != nil {
			break
		}
	}
	return nil
}

// acquire runs one producer iteration.
func (a *App) acquire(now time.Time) error {
	frame, err := a.device.Frame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	if !a.device.IsCalibrated() {
		return nil
	}

	if err := a.device.TrackAndReconstruct(frame); err != nil {
		return fmt.Errorf("track markers: %w", err)
	}

	depth := a.device.DepthMap()
	current := sensor.Contacts(depth, a.device.CurrentMarkers())

	calib := a.shared.Calibrator()
	if !calib.Captured() {
		origin := sensor.Contacts(depth, a.device.OriginMarkers())
		if calib.Capture(origin) {
			a.logger.Info("origin captured", "points", len(origin))
			if a.recorder != nil {
				if err := a.recorder.RecordCalibration(origin, now); err != nil {
					a.logger.Warn("failed to record calibration", "error", err)
				}
			}
		}
	}

	reference, _ := calib.Reference()
	debounced, err := gesture.Debounce(reference, current, a.debounceThreshold)
	if err != nil {
		return fmt.Errorf("debounce: %w", err)
	}

	sample, ok := gesture.Aggregate(debounced)
	if !ok {
		return nil
	}
	sample.At = now
	a.shared.Publish(sample)
	return nil
}
