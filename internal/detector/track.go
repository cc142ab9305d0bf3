package detector

import (
	"math"
	"sort"
	"sync"
)

// Tracker keeps a fixed, ordered set of markers. Each frame's detections
// are assigned to the tracked markers by nearest neighbour; a tracked marker
// with no detection inside the radius keeps its last position.
type Tracker struct {
	mu      sync.Mutex
	radius  float64
	origin  []Marker
	current []Marker
}

// NewTracker creates a Tracker. Call Reset before Update.
func NewTracker(radius float64) *Tracker {
	return &Tracker{radius: radius}
}

// Reset starts tracking from origin.
func (t *Tracker) Reset(origin []Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.origin = append([]Marker(nil), origin...)
	t.current = append([]Marker(nil), origin...)
}

// Update assigns detected markers and returns the new ordered positions.
func (t *Tracker) Update(detected []Marker) []Marker {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = Track(t.current, detected, t.radius)
	return append([]Marker(nil), t.current...)
}

// Origin returns the markers tracking started from.
func (t *Tracker) Origin() []Marker {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Marker(nil), t.origin...)
}

// Current returns the latest tracked positions.
func (t *Tracker) Current() []Marker {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Marker(nil), t.current...)
}

type pairing struct {
	tracked, detected int
	dist              float64
}

// Track matches detected to previous greedily in order of increasing
// distance. The result has len(previous) entries in the same order.
func Track(previous, detected []Marker, radius float64) []Marker {
	var pairs []pairing
	for i, p := range previous {
		for j, d := range detected {
			dist := math.Hypot(d.X-p.X, d.Y-p.Y)
			if dist <= radius {
				pairs = append(pairs, pairing{i, j, dist})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].dist < pairs[b].dist
	})

	out := append([]Marker(nil), previous...)
	usedTracked := make([]bool, len(previous))
	usedDetected := make([]bool, len(detected))
	for _, p := range pairs {
		if usedTracked[p.tracked] || usedDetected[p.detected] {
			continue
		}
		usedTracked[p.tracked] = true
		usedDetected[p.detected] = true
		out[p.tracked] = detected[p.detected]
	}

	return out
}
