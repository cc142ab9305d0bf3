package inject

import (
	"fmt"
	"sync"
)

// Recorder remembers every call and the set of inputs currently held. It
// is used by tests and by the e2e harness.
type Recorder struct {
	mu    sync.Mutex
	calls []string
	held  map[string]bool
	fail  map[string]error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		held: make(map[string]bool),
		fail: make(map[string]error),
	}
}

// FailOn makes the given call (for example "keydown left") return err.
func (r *Recorder) FailOn(call string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[call] = err
}

func (r *Recorder) record(verb, id string, down bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := fmt.Sprintf("%s %s", verb, id)
	if err := r.fail[call]; err != nil {
		return err
	}
	r.calls = append(r.calls, call)
	if down {
		r.held[id] = true
	} else {
		delete(r.held, id)
	}
	return nil
}

func (r *Recorder) KeyDown(key string) error      { return r.record("keydown", key, true) }
func (r *Recorder) KeyUp(key string) error        { return r.record("keyup", key, false) }
func (r *Recorder) MouseDown(button string) error { return r.record("mousedown", "mouse:"+button, true) }
func (r *Recorder) MouseUp(button string) error   { return r.record("mouseup", "mouse:"+button, false) }

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Held returns the ids currently held down.
func (r *Recorder) Held() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for id := range r.held {
		out = append(out, id)
	}
	return out
}

// Count returns how many times call was made.
func (r *Recorder) Count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}
