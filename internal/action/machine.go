package action

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/tactipad/internal/gesture"
)

// State is the consumer-owned hold state. At most one of HeldKey and
// HeldButton is non-empty.
type State struct {
	HeldKey        string    `json:"held_key,omitempty"`
	HeldButton     string    `json:"held_button,omitempty"`
	ActionStart    time.Time `json:"action_start"`
	LastActionable time.Time `json:"last_actionable"`
}

// Held reports whether a key or button is held.
func (s State) Held() bool {
	return s.HeldKey != "" || s.HeldButton != ""
}

// Event kinds.
const (
	EventPress   = "press"
	EventRelease = "release"
)

// Event is a single press or release sent to the injector.
type Event struct {
	Kind   string        `json:"kind"`
	Key    string        `json:"key,omitempty"`
	Button string        `json:"button,omitempty"`
	Label  gesture.Label `json:"label"`
	Reason string        `json:"reason,omitempty"`
	At     time.Time     `json:"at"`
}

// Transition describes what one Step did.
type Transition struct {
	Label  gesture.Label
	Forced string
	Events []Event
	State  State
}

// Machine is the input-action state machine. It is driven from a single
// goroutine; State may be read concurrently.
type Machine struct {
	mapping    Mapping
	supervisor Supervisor
	injector   Injector
	logger     *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewMachine creates a Machine in the idle state.
func NewMachine(m Mapping, s Supervisor, inj Injector, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		mapping:    m,
		supervisor: s,
		injector:   inj,
		logger:     logger,
	}
}

// State returns a snapshot of the hold state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Mapping returns the label tables.
func (m *Machine) Mapping() Mapping {
	return m.mapping
}

// Step applies one classified label at time now. Timeouts are checked
// before the label is evaluated, so a forced release may be followed by a
// fresh press in the same step.
func (m *Machine) Step(label gesture.Label, now time.Time) (Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tr := Transition{Label: label}

	if label.Actionable() {
		m.state.LastActionable = now
	}

	if reason := m.supervisor.check(m.state, now); reason != "" {
		m.logger.Warn("forcing release",
			"reason", reason,
			"key", m.state.HeldKey,
			"button", m.state.HeldButton,
			"held_for", now.Sub(m.state.ActionStart).Round(time.Millisecond))
		tr.Forced = reason
		if err := m.releaseAll(&tr, label, reason, now); err != nil {
			tr.State = m.state
			return tr, err
		}
	}

	err := m.apply(&tr, label, now)
	tr.State = m.state
	return tr, err
}

func (m *Machine) apply(tr *Transition, label gesture.Label, now time.Time) error {
	if key, ok := m.mapping.Key(label); ok {
		if key == m.state.HeldKey {
			return nil
		}
		if err := m.releaseAll(tr, label, "", now); err != nil {
			return err
		}
		if err := m.injector.KeyDown(key); err != nil {
			return fmt.Errorf("press key %q: %w", key, err)
		}
		m.state.HeldKey = key
		m.state.ActionStart = now
		tr.Events = append(tr.Events, Event{Kind: EventPress, Key: key, Label: label, At: now})
		return nil
	}

	if button, ok := m.mapping.Button(label); ok {
		if button == m.state.HeldButton {
			return nil
		}
		if err := m.releaseAll(tr, label, "", now); err != nil {
			return err
		}
		if err := m.injector.MouseDown(button); err != nil {
			return fmt.Errorf("press button %q: %w", button, err)
		}
		m.state.HeldButton = button
		m.state.ActionStart = now
		tr.Events = append(tr.Events, Event{Kind: EventPress, Button: button, Label: label, At: now})
		return nil
	}

	return m.releaseAll(tr, label, "", now)
}

func (m *Machine) releaseAll(tr *Transition, label gesture.Label, reason string, now time.Time) error {
	if key := m.state.HeldKey; key != "" {
		if err := m.injector.KeyUp(key); err != nil {
			return fmt.Errorf("release key %q: %w", key, err)
		}
		m.state.HeldKey = ""
		tr.Events = append(tr.Events, Event{Kind: EventRelease, Key: key, Label: label, Reason: reason, At: now})
	}
	if button := m.state.HeldButton; button != "" {
		if err := m.injector.MouseUp(button); err != nil {
			return fmt.Errorf("release button %q: %w", button, err)
		}
		m.state.HeldButton = ""
		tr.Events = append(tr.Events, Event{Kind: EventRelease, Button: button, Label: label, Reason: reason, At: now})
	}
	return nil
}

// ReleaseAll releases whatever is held and returns to idle.
func (m *Machine) ReleaseAll(reason string, now time.Time) (Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tr := Transition{Label: gesture.None, Forced: reason}
	err := m.releaseAll(&tr, gesture.None, reason, now)
	tr.State = m.state
	return tr, err
}

// Shutdown sends a release for every mapped key and button, held or not,
// and clears the state. Every release is attempted; failures are joined.
func (m *Machine) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, key := range m.mapping.DistinctKeys() {
		if err := m.injector.KeyUp(key); err != nil {
			errs = append(errs, fmt.Errorf("release key %q: %w", key, err))
		}
	}
	for _, button := range m.mapping.DistinctButtons() {
		if err := m.injector.MouseUp(button); err != nil {
			errs = append(errs, fmt.Errorf("release button %q: %w", button, err))
		}
	}
	m.state.HeldKey = ""
	m.state.HeldButton = ""
	return errors.Join(errs...)
}
