package detector

import (
	"errors"
	"sort"
	"sync"

	"gocv.io/x/gocv"
)

// BlobDetector finds markers with OpenCV's SimpleBlobDetector.
type BlobDetector struct {
	mu       sync.Mutex
	detector gocv.SimpleBlobDetector
}

// NewBlobDetector creates a BlobDetector.
func NewBlobDetector(cfg Config) *BlobDetector {
	params := gocv.NewSimpleBlobDetectorParams()
	params.SetFilterByArea(true)
	params.SetMinArea(cfg.MinArea)
	params.SetMaxArea(cfg.MaxArea)
	params.SetFilterByColor(true)
	if cfg.DarkMarkers {
		params.SetBlobColor(0)
	} else {
		params.SetBlobColor(255)
	}

	return &BlobDetector{
		detector: gocv.NewSimpleBlobDetectorWithParams(params),
	}
}

// Detect returns markers sorted top-to-bottom, then left-to-right.
func (d *BlobDetector) Detect(frame *gocv.Mat) ([]Marker, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("empty frame")
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	d.mu.Lock()
	kps := d.detector.Detect(gray)
	d.mu.Unlock()

	markers := make([]Marker, len(kps))
	for i, kp := range kps {
		markers[i] = Marker{X: kp.X, Y: kp.Y}
	}
	SortMarkers(markers)

	return markers, nil
}

// Close releases the OpenCV detector.
func (d *BlobDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detector.Close()
}

// SortMarkers orders markers by row, then column.
func SortMarkers(markers []Marker) {
	sort.Slice(markers, func(i, j int) bool {
		if markers[i].Y != markers[j].Y {
			return markers[i].Y < markers[j].Y
		}
		return markers[i].X < markers[j].X
	})
}
