package capture

import (
	"errors"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultBlurSize is the Gaussian kernel applied before differencing.
const DefaultBlurSize = 5

// ErrNoReference is returned by Estimate before a reference frame is set.
var ErrNoReference = errors.New("deformation reference not set")

// Deformation estimates how far the gel has been pushed in at every pixel by
// differencing the blurred grayscale frame against an unloaded reference.
// The result is a single-channel float32 map; larger means deeper.
type Deformation struct {
	mu        sync.Mutex
	blurSize  int
	reference gocv.Mat
	hasRef    bool
}

// NewDeformation creates an estimator. blurSize must be odd; even or
// non-positive values use DefaultBlurSize.
func NewDeformation(blurSize int) *Deformation {
	if blurSize <= 0 || blurSize%2 == 0 {
		blurSize = DefaultBlurSize
	}
	return &Deformation{
		blurSize:  blurSize,
		reference: gocv.NewMat(),
	}
}

func (d *Deformation) preprocess(frame *gocv.Mat, dst *gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	gocv.GaussianBlur(gray, dst, image.Point{X: d.blurSize, Y: d.blurSize}, 0, 0, gocv.BorderDefault)
}

// SetReference stores frame as the unloaded gel.
func (d *Deformation) SetReference(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return errors.New("empty reference frame")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.preprocess(frame, &d.reference)
	d.hasRef = true
	return nil
}

// HasReference reports whether SetReference has succeeded.
func (d *Deformation) HasReference() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasRef
}

// Estimate writes the deformation map for frame into dst.
func (d *Deformation) Estimate(frame *gocv.Mat, dst *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return errors.New("empty frame")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasRef {
		return ErrNoReference
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	d.preprocess(frame, &blurred)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, d.reference, &diff)

	diff.ConvertTo(dst, gocv.MatTypeCV32F)
	return nil
}

// Reset forgets the reference.
func (d *Deformation) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reference.Close()
	d.reference = gocv.NewMat()
	d.hasRef = false
}

// Close releases resources used by the estimator.
func (d *Deformation) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reference.Close()
	d.hasRef = false
}
