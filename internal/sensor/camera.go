package sensor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/tactipad/internal/capture"
	"github.com/ayusman/tactipad/internal/detector"
)

// CameraOptions configures a CameraDevice.
type CameraOptions struct {
	// CameraIDs are probed in order; the first that opens is used.
	CameraIDs []int
	// CalibrationFrames are read before the reference is captured.
	CalibrationFrames int
	// TrackRadius bounds how far a marker may move between frames, in pixels.
	TrackRadius float64
	Detector    detector.Config
	Capture     capture.Options
	Logger      *slog.Logger

	// OpenCamera overrides camera construction; tests use it.
	OpenCamera func(id int, opts capture.Options) capture.Camera
	// NewDetector overrides detector construction; tests use it.
	NewDetector func(cfg detector.Config) detector.Detector
}

// CameraDevice is a gel-and-camera tactile sensor. Markers are found with
// blob detection and depth is approximated from the intensity change
// against the unloaded gel.
type CameraDevice struct {
	opts   CameraOptions
	logger *slog.Logger

	camera      capture.Camera
	detector    detector.Detector
	tracker     *detector.Tracker
	deformation *capture.Deformation

	mu         sync.Mutex
	depth      gocv.Mat
	warmup     int
	calibrated bool
	released   bool
}

// NewCameraDevice creates an unconnected CameraDevice.
func NewCameraDevice(opts CameraOptions) *CameraDevice {
	if opts.CalibrationFrames <= 0 {
		opts.CalibrationFrames = 10
	}
	if opts.TrackRadius <= 0 {
		opts.TrackRadius = 25
	}
	if opts.OpenCamera == nil {
		opts.OpenCamera = capture.NewCamera
	}
	if opts.NewDetector == nil {
		opts.NewDetector = func(cfg detector.Config) detector.Detector {
			return detector.NewBlobDetector(cfg)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CameraDevice{
		opts:    opts,
		logger:  logger,
		tracker: detector.NewTracker(opts.TrackRadius),
		depth:   gocv.NewMat(),
	}
}

// Connect probes the configured cameras and opens the first that answers.
func (d *CameraDevice) Connect() error {
	var errs []error
	for _, id := range d.opts.CameraIDs {
		cam := d.opts.OpenCamera(id, d.opts.Capture)
		if err := cam.Open(); err != nil {
			errs = append(errs, err)
			d.logger.Debug("camera probe failed", "camera_id", id, "error", err)
			continue
		}

		d.mu.Lock()
		d.camera = cam
		d.detector = d.opts.NewDetector(d.opts.Detector)
		d.deformation = capture.NewDeformation(capture.DefaultBlurSize)
		d.warmup = 0
		d.calibrated = false
		d.released = false
		d.mu.Unlock()

		d.logger.Info("sensor connected", "camera_id", id, "calibration_frames", d.opts.CalibrationFrames)
		return nil
	}

	if len(errs) == 0 {
		return ErrDeviceNotFound
	}
	return fmt.Errorf("%w: %w", ErrDeviceNotFound, errors.Join(errs...))
}

// IsCalibrated reports whether warm-up has finished.
func (d *CameraDevice) IsCalibrated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calibrated
}

// Frame reads the next frame. Until calibrated, frames also feed warm-up;
// the last warm-up frame becomes the reference and its markers the origin.
func (d *CameraDevice) Frame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.camera == nil || d.released {
		return nil, ErrNotConnected
	}

	frame, err := d.camera.ReadFrame()
	if err != nil {
		return nil, err
	}

	if !d.calibrated {
		d.warmup++
		if d.warmup >= d.opts.CalibrationFrames {
			if err := d.calibrate(frame); err != nil {
				frame.Close()
				return nil, err
			}
		}
	}

	return frame, nil
}

func (d *CameraDevice) calibrate(frame *gocv.Mat) error {
	markers, err := d.detector.Detect(frame)
	if err != nil {
		return fmt.Errorf("calibration: %w", err)
	}
	if len(markers) == 0 {
		return ErrNoMarkers
	}
	if err := d.deformation.SetReference(frame); err != nil {
		return fmt.Errorf("calibration: %w", err)
	}

	d.tracker.Reset(markers)
	d.calibrated = true
	d.logger.Info("sensor calibrated", "markers", len(markers))
	return nil
}

// TrackAndReconstruct updates marker positions and the depth map.
func (d *CameraDevice) TrackAndReconstruct(frame *gocv.Mat) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.camera == nil || d.released {
		return ErrNotConnected
	}
	if !d.calibrated {
		return errors.New("sensor not calibrated")
	}

	detected, err := d.detector.Detect(frame)
	if err != nil {
		return fmt.Errorf("detect markers: %w", err)
	}
	d.tracker.Update(detected)

	if err := d.deformation.Estimate(frame, &d.depth); err != nil {
		return fmt.Errorf("reconstruct depth: %w", err)
	}
	return nil
}

// DepthMap returns the device-owned depth map.
func (d *CameraDevice) DepthMap() *gocv.Mat {
	return &d.depth
}

func (d *CameraDevice) CurrentMarkers() []detector.Marker {
	return d.tracker.Current()
}

func (d *CameraDevice) OriginMarkers() []detector.Marker {
	return d.tracker.Origin()
}

// Preview returns the normalized depth map.
func (d *CameraDevice) Preview() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil, ErrNotConnected
	}
	if d.depth.Empty() {
		return nil, errors.New("no depth map yet")
	}
	norm := NormalizeDepth(&d.depth)
	return &norm, nil
}

// Release closes the camera and frees OpenCV resources. Later calls are no-ops.
func (d *CameraDevice) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil
	}
	d.released = true

	var errs []error
	if d.camera != nil {
		if err := d.camera.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close camera: %w", err))
		}
	}
	if d.detector != nil {
		if err := d.detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
	}
	if d.deformation != nil {
		d.deformation.Close()
	}
	d.depth.Close()

	return errors.Join(errs...)
}
